package converter

import (
	"time"

	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"
)

// IncidentRequestToEntity builds a new Incident; createdAt and updatedAt both start at now
func IncidentRequestToEntity(req *dto.IncidentRequest, id string, now time.Time) entity.Incident {
	status := req.Status
	if status == "" {
		status = entity.IncidentStatusScheduled
	}

	incident := entity.Incident{
		ID:                  id,
		PatientID:           req.PatientID,
		Title:               req.Title,
		Description:         req.Description,
		Comments:            req.Comments,
		AppointmentDate:     req.AppointmentDate,
		Cost:                req.Cost,
		Treatment:           req.Treatment,
		Status:              status,
		NextAppointmentDate: req.NextAppointmentDate,
		Files:               req.Files,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return incident.Clone()
}

// UpdateIncidentRequestToPatch converts an update request to an IncidentPatch
func UpdateIncidentRequestToPatch(req *dto.UpdateIncidentRequest) entity.IncidentPatch {
	if req == nil {
		return entity.IncidentPatch{}
	}
	return entity.IncidentPatch{
		PatientID:           req.PatientID,
		Title:               req.Title,
		Description:         req.Description,
		Comments:            req.Comments,
		AppointmentDate:     req.AppointmentDate,
		Cost:                req.Cost,
		Treatment:           req.Treatment,
		Status:              req.Status,
		NextAppointmentDate: req.NextAppointmentDate,

		ClearCost:                req.ClearCost,
		ClearTreatment:           req.ClearTreatment,
		ClearNextAppointmentDate: req.ClearNextAppointmentDate,
	}
}

// FileToResponse converts a FileAttachment to FileResponse DTO, leaving out the content
func FileToResponse(file *entity.FileAttachment) dto.FileResponse {
	return dto.FileResponse{
		ID:         file.ID,
		Name:       file.Name,
		Type:       file.Type,
		Size:       file.Size,
		UploadedAt: file.UploadedAt,
	}
}

// IncidentToResponse converts an Incident to IncidentResponse DTO.
// patientName may be empty when the caller does not resolve it.
func IncidentToResponse(incident *entity.Incident, patientName string) *dto.IncidentResponse {
	if incident == nil {
		return nil
	}

	files := make([]dto.FileResponse, 0, len(incident.Files))
	for i := range incident.Files {
		files = append(files, FileToResponse(&incident.Files[i]))
	}

	return &dto.IncidentResponse{
		ID:                  incident.ID,
		PatientID:           incident.PatientID,
		PatientName:         patientName,
		Title:               incident.Title,
		Description:         incident.Description,
		Comments:            incident.Comments,
		AppointmentDate:     incident.AppointmentDate,
		Cost:                incident.Cost,
		Treatment:           incident.Treatment,
		Status:              incident.Status,
		NextAppointmentDate: incident.NextAppointmentDate,
		Files:               files,
		CreatedAt:           incident.CreatedAt,
		UpdatedAt:           incident.UpdatedAt,
	}
}

// IncidentsToResponse converts incidents, resolving patient names from patients
func IncidentsToResponse(incidents []entity.Incident, patients []entity.Patient) []dto.IncidentResponse {
	names := make(map[string]string, len(patients))
	for _, p := range patients {
		names[p.ID] = p.Name
	}

	responses := make([]dto.IncidentResponse, 0, len(incidents))
	for i := range incidents {
		responses = append(responses, *IncidentToResponse(&incidents[i], names[incidents[i].PatientID]))
	}
	return responses
}
