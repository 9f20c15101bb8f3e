package v1

import (
	"strconv"

	"github.com/shenikar/sos_assistance_system/internal/models"
)

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:        model.ID,
		Timestamp: model.Timestamp,
		Latitude:  model.Latitude,
		Longitude: model.Longitude,
		Severity:  model.Severity,
		Details:   model.Details,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ResultToRiskScoreResponse преобразует итог обработки тревоги в DTO.
// Номер инцидента отдается строкой внутри details - этого формата
// ждет клиент репортера.
func ResultToRiskScoreResponse(result *models.AlertResult) *RiskScoreResponse {
	details := make(map[string]any, len(result.Details)+1)
	for k, v := range result.Details {
		details[k] = v
	}
	details["incident_id"] = strconv.FormatInt(result.IncidentID, 10)

	return &RiskScoreResponse{
		Severity:   result.Severity,
		Confidence: result.Confidence,
		Message:    result.Message,
		Details:    details,
	}
}
