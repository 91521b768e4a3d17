package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleStorekeeper = "storekeeper" // almacenista: gestiona catálogos y requisiciones
	RoleTechnician  = "technician"  // técnico: solicita requisiciones
)

// ValidRole indica si el rol es uno de los conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStorekeeper || role == RoleTechnician
}

// User representa un usuario de la consola E&M.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, storekeeper, technician
	Department   string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
