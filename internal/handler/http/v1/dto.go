package v1

import (
	"time"
)

// SOSAlertForm DTO для полей формы multipart-тревоги
// @Description DTO для полей формы multipart-тревоги
type SOSAlertForm struct {
	LocationData string `form:"location_data" validate:"required"`
	TextMessage  string `form:"text_message"`
}

// RiskScoreResponse DTO для ответа с результатом оценки тревоги
// @Description DTO для ответа с результатом оценки тревоги
type RiskScoreResponse struct {
	Severity   string         `json:"severity"`
	Confidence float64        `json:"confidence"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details"`
}

// IncidentResponse DTO для записи инцидента на диспетчерской панели.
// Координаты отдаются строками, какими их прислал репортер.
type IncidentResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	Severity  string    `json:"severity"`
	Details   string    `json:"details,omitempty"`
}

// LoginRequest DTO для входа диспетчера
// @Description DTO для входа диспетчера
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse DTO для ответа на вход диспетчера
// @Description DTO для ответа на вход диспетчера
type LoginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}
