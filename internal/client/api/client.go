package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Фиксированное имя аудиофайла в multipart-запросе тревоги
const audioFileName = "sos_audio.wav"

// DefaultTextMessage подставляется, если репортер не ввел текст
const DefaultTextMessage = "SOS! Emergency assistance required."

// SubmitResult - результат классификации тревоги бэкендом.
// Поля переносятся из ответа как есть, без проверки диапазонов.
type SubmitResult struct {
	Severity   string
	Confidence float64
	Message    string
	IncidentID string // может быть пустым, если сервер его не прислал
}

// Client - типизированный клиент бэкенда тревог
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SubmitAlert отправляет тревогу одним multipart-запросом из трех
// частей: аудио, координаты и текст. Без повторов и докачки: любой
// сбой транспорта или не-2xx ответ - одна и та же ошибка отправки.
func (c *Client) SubmitAlert(ctx context.Context, lat, lon float64, audio []byte, textMessage string) (*SubmitResult, error) {
	if textMessage == "" {
		textMessage = DefaultTextMessage
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("audio_file", audioFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio part: %w", err)
	}

	location := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	if err := mw.WriteField("location_data", location); err != nil {
		return nil, fmt.Errorf("failed to write location part: %w", err)
	}
	if err := mw.WriteField("text_message", textMessage); err != nil {
		return nil, fmt.Errorf("failed to write text part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/sos_alert", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("alert submission rejected with status %d", resp.StatusCode)
	}

	var wire struct {
		Severity   string          `json:"severity"`
		Confidence float64         `json:"confidence"`
		Message    string          `json:"message"`
		Details    json.RawMessage `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode alert response: %w", err)
	}

	result := &SubmitResult{
		Severity:   wire.Severity,
		Confidence: wire.Confidence,
		Message:    wire.Message,
	}

	// incident_id лежит внутри details и не обязателен
	if len(wire.Details) > 0 {
		var details struct {
			IncidentID string `json:"incident_id"`
		}
		if err := json.Unmarshal(wire.Details, &details); err == nil {
			result.IncidentID = details.IncidentID
		}
	}

	return result, nil
}

// FetchIncidents запрашивает ленту инцидентов панели. Общий секрет
// передается заголовком admin-secret на каждый вызов.
func (c *Client) FetchIncidents(ctx context.Context, secret string) ([]Incident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/incidents", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create incidents request: %w", err)
	}
	req.Header.Set("admin-secret", secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch incidents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("incident fetch rejected with status %d", resp.StatusCode)
	}

	var incidents []Incident
	if err := json.NewDecoder(resp.Body).Decode(&incidents); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}
	return incidents, nil
}

// Login проверяет учетные данные диспетчера на сервере
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}

	var wire struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	return wire.Token, nil
}
