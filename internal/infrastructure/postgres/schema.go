package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/em-inventario/internal/domain/catalog"
)

// NotifyChannel canal LISTEN/NOTIFY por el que viajan los cambios de libro y catálogo.
const NotifyChannel = "em_changes"

// schema DDL idempotente. El payload de pg_notify es {"table","op","id","category","origin"};
// origin es el application_name de la sesión que hizo el cambio.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL,
		role          TEXT NOT NULL,
		department    TEXT,
		status        TEXT NOT NULL DEFAULT 'active',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
		id           TEXT PRIMARY KEY,
		category     TEXT NOT NULL,
		name         TEXT NOT NULL,
		code         TEXT,
		quantity     INTEGER NOT NULL DEFAULT 0,
		location     TEXT,
		unit         TEXT,
		description  TEXT,
		assigned_to  TEXT,
		min_quantity INTEGER NOT NULL DEFAULT 0,
		unit_cost    NUMERIC(14,2) NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// name_key/code_key: nombre y código plegados en Go (catalog.FoldKey); lower() de PostgreSQL
	// no pliega igual ("ß", collation C).
	`ALTER TABLE catalog_items ADD COLUMN IF NOT EXISTS name_key TEXT`,
	`ALTER TABLE catalog_items ADD COLUMN IF NOT EXISTS code_key TEXT`,
	`DROP INDEX IF EXISTS catalog_items_match_idx`,
	`CREATE INDEX IF NOT EXISTS catalog_items_name_key_idx ON catalog_items (category, name_key)`,
	`CREATE INDEX IF NOT EXISTS catalog_items_code_key_idx ON catalog_items (category, code_key)`,
	`CREATE SEQUENCE IF NOT EXISTS requisition_ref_seq`,
	`CREATE TABLE IF NOT EXISTS requisitions (
		id                 TEXT PRIMARY KEY,
		reference_number   TEXT NOT NULL UNIQUE,
		requisition_type   TEXT NOT NULL,
		item_type          TEXT NOT NULL,
		issued_to          TEXT NOT NULL,
		location           TEXT,
		department         TEXT,
		remarks            TEXT,
		status             TEXT NOT NULL,
		expected_return_at TIMESTAMPTZ,
		created_by         TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_updated       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS requisitions_created_idx ON requisitions (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS requisition_items (
		requisition_id  TEXT NOT NULL REFERENCES requisitions(id) ON DELETE CASCADE,
		line_no         INTEGER NOT NULL,
		item_type       TEXT NOT NULL,
		item_name       TEXT NOT NULL,
		item_code       TEXT,
		quantity        INTEGER NOT NULL CHECK (quantity > 0),
		outcome         TEXT,
		outcome_reason  TEXT,
		catalog_item_id TEXT,
		PRIMARY KEY (requisition_id, line_no)
	)`,
	`CREATE OR REPLACE FUNCTION em_notify_change() RETURNS trigger AS $$
	DECLARE
		rec RECORD;
		cat TEXT := NULL;
	BEGIN
		IF TG_OP = 'DELETE' THEN rec := OLD; ELSE rec := NEW; END IF;
		IF TG_TABLE_NAME = 'catalog_items' THEN cat := rec.category; END IF;
		PERFORM pg_notify('` + NotifyChannel + `', json_build_object(
			'table', TG_TABLE_NAME,
			'op', lower(TG_OP),
			'id', rec.id,
			'category', cat,
			'origin', current_setting('application_name', true)
		)::text);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS requisitions_notify ON requisitions`,
	`CREATE TRIGGER requisitions_notify AFTER INSERT OR UPDATE OR DELETE ON requisitions
		FOR EACH ROW EXECUTE FUNCTION em_notify_change()`,
	`DROP TRIGGER IF EXISTS catalog_items_notify ON catalog_items`,
	`CREATE TRIGGER catalog_items_notify AFTER INSERT OR UPDATE OR DELETE ON catalog_items
		FOR EACH ROW EXECUTE FUNCTION em_notify_change()`,
}

// EnsureSchema crea tablas, secuencia y triggers si no existen. Corre en una sola transacción.
func EnsureSchema(ctx context.Context, db Querier) error {
	return NewTxRunner(db).Run(ctx, func(q Querier) error {
		for i, stmt := range schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("schema paso %d: %w", i+1, err)
			}
		}
		return backfillMatchKeys(ctx, q)
	})
}

// backfillMatchKeys calcula name_key/code_key de las filas creadas antes de existir las columnas.
func backfillMatchKeys(ctx context.Context, q Querier) error {
	type pending struct{ id, name, code string }
	rows, err := q.Query(ctx, `SELECT id, name, coalesce(code, '') FROM catalog_items WHERE name_key IS NULL`)
	if err != nil {
		return fmt.Errorf("select match keys: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (pending, error) {
		var p pending
		err := row.Scan(&p.id, &p.name, &p.code)
		return p, err
	})
	if err != nil {
		return fmt.Errorf("scan match keys: %w", err)
	}
	if len(list) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range list {
		batch.Queue(`UPDATE catalog_items SET name_key = $2, code_key = $3 WHERE id = $1`,
			p.id, catalog.FoldKey(p.name), nullIfEmpty(catalog.FoldKey(p.code)))
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("backfill match keys: %w", err)
	}
	return nil
}
