package models

// AlertInput - входные данные тревоги из multipart-запроса
type AlertInput struct {
	AudioPath   string // путь к временному аудиофайлу, может быть пустым
	AudioName   string // исходное имя файла от репортера
	Location    string // строка "lat,lon" как прислал клиент
	TextMessage string
}

// AlertResult - итог обработки тревоги для ответа репортеру
type AlertResult struct {
	Severity   string
	Confidence float64
	Message    string
	IncidentID int64
	Details    map[string]any
}
