package models

import (
	"time"
)

// Incident - зарегистрированная тревога. Идентификаторы монотонно
// назначаются базой, timestamp проставляется при приеме.
// Координаты храним текстом, как их прислал репортер: фронтовая часть
// парсит их в числа сама.
type Incident struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	Severity  string    `json:"severity"`
	Details   string    `json:"details"`
}
