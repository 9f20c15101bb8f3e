package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Incident - запись инцидента, как ее видит панель
type Incident struct {
	ID        int64      `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Severity  string     `json:"severity"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// Coordinate - координата, которая с бэкенда может прийти и числом,
// и числоподобной строкой. Raw хранит исходный текст для таблицы,
// Value - распарсенное значение для карты.
type Coordinate struct {
	Raw   string
	Value float64
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		c.Raw = str
	} else {
		c.Raw = s
	}

	// Непарсящееся значение дает нулевую координату, а не ошибку:
	// маркер рисуется в (0,0), лента при этом не ломается
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64)
	if err != nil {
		c.Value = 0
		return nil
	}
	c.Value = v
	return nil
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Raw)
}

func (c Coordinate) String() string { return c.Raw }
