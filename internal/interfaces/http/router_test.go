package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/em-inventario/internal/application/auth"
	appcatalog "github.com/jhoicas/em-inventario/internal/application/catalog"
	"github.com/jhoicas/em-inventario/internal/application/dashboard"
	"github.com/jhoicas/em-inventario/internal/application/document"
	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/application/requisition"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
	"github.com/jhoicas/em-inventario/internal/infrastructure/memory"
	"github.com/jhoicas/em-inventario/internal/infrastructure/spreadsheet"
	apphttp "github.com/jhoicas/em-inventario/internal/interfaces/http"
)

type testAPI struct {
	app      *fiber.App
	registry *appcatalog.Registry
}

// newTestAPI levanta el router completo sobre stores en memoria.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	reg := appcatalog.NewRegistry()
	for _, c := range entity.Categories() {
		reg.Register(c, memory.NewCatalogStore(c))
	}
	signals := events.NewBus[events.Signal]("catalog", log)
	changes := events.NewBus[entity.RequisitionChange]("ledger", log)
	ledgerRepo := memory.NewRequisitionRepository()
	ledger := requisition.NewLedgerUseCase(ledgerRepo, requisition.NewReconciler(reg, signals, log), changes,
		requisition.Options{Policy: requisition.PolicyBestEffort, EnforceStock: true}, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(memory.NewUserRepository(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}, log),
		CatalogUC:   appcatalog.NewUseCase(reg, signals, log),
		Registry:    reg,
		LedgerUC:    ledger,
		DashboardUC: dashboard.NewUseCase(reg, ledgerRepo, log),
		DocumentUC: document.NewUseCase(ledger, "E&M", map[document.Format]document.Renderer{
			document.FormatXLS: spreadsheet.NewHTMLRenderer(),
		}, log),
		CatalogChanges: signals,
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return &testAPI{app: app, registry: reg}
}

func (a *testAPI) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAPI_SinTokenRetorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/requisitions", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CatalogoYRequisicionConcilian(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/catalog/tools", "storekeeper", dto.CatalogItemRequest{Name: "Drill", Quantity: 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[dto.CatalogItemResponse](t, resp)

	resp = api.do(t, http.MethodPost, "/api/requisitions", "technician", dto.CreateRequisitionRequest{
		RequisitionType: "issue", ItemType: "tools", ItemName: "drill", Quantity: 2, IssuedTo: "A. Otieno",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CreateRequisitionResponse](t, resp)
	assert.Equal(t, "REQ-000001", created.Requisition.ReferenceNumber)
	assert.Equal(t, "Electrical", created.Requisition.Department, "el departamento sale del token")
	require.Len(t, created.Reconciliation, 1)
	assert.Equal(t, "applied", created.Reconciliation[0].Outcome)

	resp = api.do(t, http.MethodGet, "/api/catalog/tools/"+item.ID, "technician", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[dto.CatalogItemResponse](t, resp).Quantity)
}

func TestAPI_StockInsuficienteRetorna409(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/catalog/ppe", "storekeeper", dto.CatalogItemRequest{Name: "Gloves", Quantity: 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/requisitions", "technician", dto.CreateRequisitionRequest{
		RequisitionType: "issue", ItemType: "ppe", ItemName: "Gloves", Quantity: 4, IssuedTo: "A. Otieno",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_CategoriaDesconocidaRetorna400(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/catalog/vehicles", "technician", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_CATEGORY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_RequisicionInexistenteRetorna404(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/requisitions/no-existe", "technician", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_EliminarRequiereRol(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/requisitions", "technician", dto.CreateRequisitionRequest{
		RequisitionType: "return", ItemType: "tools", ItemName: "Grinder", Quantity: 1, IssuedTo: "A. Otieno",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CreateRequisitionResponse](t, resp)
	path := "/api/requisitions/" + created.Requisition.ID

	resp = api.do(t, http.MethodDelete, path, "technician", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, path, "storekeeper", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_EstadoTerminalRetorna409(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/requisitions", "technician", dto.CreateRequisitionRequest{
		RequisitionType: "return", ItemType: "tools", ItemName: "Grinder", Quantity: 1, IssuedTo: "A. Otieno",
	})
	created := decode[dto.CreateRequisitionResponse](t, resp)
	path := "/api/requisitions/" + created.Requisition.ID

	completed := "completed"
	resp = api.do(t, http.MethodPatch, path, "storekeeper", dto.UpdateRequisitionRequest{Status: &completed})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pending := "pending"
	resp = api.do(t, http.MethodPatch, path, "storekeeper", dto.UpdateRequisitionRequest{Status: &pending})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_DocumentoXLSDeRequisicion(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/requisitions", "technician", dto.CreateRequisitionRequest{
		RequisitionType: "issue", ItemType: "stationery", ItemName: "A4 Paper", Quantity: 3, IssuedTo: "A. Otieno",
	})
	created := decode[dto.CreateRequisitionResponse](t, resp)

	resp = api.do(t, http.MethodGet, "/api/requisitions/"+created.Requisition.ID+"/documents/gate-pass.xls", "technician", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.ms-excel", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "gate-pass-REQ-000001.xls")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "A4 Paper")
}

func TestAPI_DocumentoFormatoNoDisponible(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/documents/issuance.pdf", "technician", dto.DocumentRequest{
		IssuedTo: "A. Otieno", Items: []dto.DocumentLineRequest{{ItemName: "Pen", Quantity: 1}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Dashboard(t *testing.T) {
	api := newTestAPI(t)
	store, err := api.registry.Store(entity.CategorySpareParts)
	require.NoError(t, err)
	_, err = store.Upsert(context.Background(), entity.CatalogItem{Name: "Bearing", Quantity: 1, MinQuantity: 2})
	require.NoError(t, err)

	resp := api.do(t, http.MethodGet, "/api/dashboard", "technician", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[dto.DashboardSummaryDTO](t, resp)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Bearing", summary.LowStock[0].Name)
}
