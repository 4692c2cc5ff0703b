package entity

import "time"

// Patient represents a registered patient of the dental center
type Patient struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DOB        string    `json:"dob"`
	Contact    string    `json:"contact"`
	Email      string    `json:"email"`
	HealthInfo string    `json:"healthInfo"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PatientPatch holds the fields of a partial patient update.
// Nil fields are left untouched; ID and CreatedAt are not patchable.
type PatientPatch struct {
	Name       *string
	DOB        *string
	Contact    *string
	Email      *string
	HealthInfo *string
}

// IsEmpty reports whether the patch carries no field at all
func (p PatientPatch) IsEmpty() bool {
	return p.Name == nil && p.DOB == nil && p.Contact == nil && p.Email == nil && p.HealthInfo == nil
}
