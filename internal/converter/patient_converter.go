package converter

import (
	"time"

	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"
)

// PatientRequestToEntity builds a new Patient from the request with the assigned id and creation time
func PatientRequestToEntity(req *dto.PatientRequest, id string, createdAt time.Time) entity.Patient {
	return entity.Patient{
		ID:         id,
		Name:       req.Name,
		DOB:        req.DOB,
		Contact:    req.Contact,
		Email:      req.Email,
		HealthInfo: req.HealthInfo,
		CreatedAt:  createdAt,
	}
}

// UpdatePatientRequestToPatch converts an update request to a PatientPatch
func UpdatePatientRequestToPatch(req *dto.UpdatePatientRequest) entity.PatientPatch {
	if req == nil {
		return entity.PatientPatch{}
	}
	return entity.PatientPatch{
		Name:       req.Name,
		DOB:        req.DOB,
		Contact:    req.Contact,
		Email:      req.Email,
		HealthInfo: req.HealthInfo,
	}
}

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:         patient.ID,
		Name:       patient.Name,
		DOB:        patient.DOB,
		Contact:    patient.Contact,
		Email:      patient.Email,
		HealthInfo: patient.HealthInfo,
		CreatedAt:  patient.CreatedAt,
	}
}

// PatientsToResponse converts a list of patients
func PatientsToResponse(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		responses = append(responses, *PatientToResponse(&patients[i]))
	}
	return responses
}
