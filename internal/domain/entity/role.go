package entity

// Role represents the access level of a seeded user
type Role string

// Role constants
const (
	RoleAdmin   Role = "Admin"
	RolePatient Role = "Patient"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RolePatient
}
