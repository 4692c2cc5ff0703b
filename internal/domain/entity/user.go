package entity

// User represents a seeded login account.
// Admin users never carry a PatientID; Patient users always reference an existing Patient.
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      Role    `json:"role"`
	PatientID *string `json:"patientId,omitempty"`
}

// IsAdmin checks if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPatient checks if the user has the patient role
func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}

// Clone returns a copy of the user that shares no pointers with u
func (u User) Clone() User {
	u.PatientID = cloneString(u.PatientID)
	return u
}
