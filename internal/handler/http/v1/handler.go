package v1

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/sos_assistance_system/internal/config"
	"github.com/shenikar/sos_assistance_system/internal/models"
	"github.com/shenikar/sos_assistance_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService service.IncidentService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Submit an SOS alert
// @Description Receives an SOS alert (audio + location + optional text), scores its risk and stores the incident.
// @Tags Alerts
// @Accept multipart/form-data
// @Produce json
// @Param audio_file formData file false "Optional 3-second audio clip"
// @Param location_data formData string true "GPS location data (lat,lon)"
// @Param text_message formData string false "Optional text message from user"
// @Success 200 {object} RiskScoreResponse
// @Failure 400 {object} map[string]string "Missing location data"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sos_alert [post]
func (h *Handler) postSOSAlert(c *gin.Context) {
	log := h.logger.WithField("method", "postSOSAlert")

	form := SOSAlertForm{
		LocationData: c.PostForm("location_data"),
		TextMessage:  c.PostForm("text_message"),
	}
	if err := h.validate.Struct(form); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Аудио опционально: сохраняем во временный файл с уникальным
	// именем и всегда удаляем после обработки
	audioPath := ""
	audioName := ""
	if fileHeader, err := c.FormFile("audio_file"); err == nil && fileHeader.Filename != "" {
		audioName = fileHeader.Filename
		path, err := h.saveUpload(fileHeader)
		if err != nil {
			log.WithError(err).Error("Failed to save uploaded audio")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		audioPath = path
		defer func() {
			if err := os.Remove(audioPath); err != nil {
				log.WithError(err).Warn("Failed to remove temp audio file")
			}
		}()
	}

	input := models.AlertInput{
		AudioPath:   audioPath,
		AudioName:   audioName,
		Location:    form.LocationData,
		TextMessage: form.TextMessage,
	}

	result, err := h.incidentService.ReportAlert(c.Request.Context(), input)
	if err != nil {
		log.WithError(err).Error("Failed to process alert in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error during risk scoring"})
		return
	}

	c.JSON(http.StatusOK, ResultToRiskScoreResponse(result))
}

// saveUpload сохраняет multipart-файл под uuid-именем в каталоге загрузок
func (h *Handler) saveUpload(fileHeader *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(h.cfg.UploadDir, uuid.New().String()+ext)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return path, nil
}

// @Summary Get the incident list
// @Description Get all registered incidents, newest first. Requires the admin-secret header.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param admin-secret header string true "Shared dashboard secret"
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	incidents, err := h.incidentService.ListIncidents(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Dispatcher login
// @Description Check dispatcher credentials and return the dashboard token.
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Dispatcher credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /login [post]
func (h *Handler) login(c *gin.Context) {
	log := h.logger.WithField("method", "login")

	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.incidentService.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
			return
		}
		log.WithError(err).Error("Login failed in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Status: "success", Token: token})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
