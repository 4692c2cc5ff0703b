package dto

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Response DTOs

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	PatientID *string `json:"patientId,omitempty"`
}

type SessionResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *UserResponse `json:"user,omitempty"`
}
