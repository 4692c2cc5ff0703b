package converter

import (
	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO, leaving out the password
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	var patientID *string
	if user.PatientID != nil {
		id := *user.PatientID
		patientID = &id
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		PatientID: patientID,
	}
}
