package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/sos_assistance_system/internal/config"
	"github.com/shenikar/sos_assistance_system/internal/models"
	"github.com/shenikar/sos_assistance_system/internal/notify"
	"github.com/shenikar/sos_assistance_system/internal/risk"
	"github.com/sirupsen/logrus"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль
var ErrInvalidCredentials = errors.New("invalid credentials")

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	EnsureDefaultAdmin(ctx context.Context, username, password string) error
	GetIncidentListFromCache(ctx context.Context) ([]*models.Incident, error)
	SetIncidentListCache(ctx context.Context, incidents []*models.Incident) error
	InvalidateIncidentListCache(ctx context.Context) error
}

// RiskScorer определяет контракт движка оценки риска
type RiskScorer interface {
	Score(ctx context.Context, audioPath string, textInput string) (*risk.Assessment, error)
}

// IncidentService определяет контракт бизнес-логики приема тревог
type IncidentService interface {
	ReportAlert(ctx context.Context, input models.AlertInput) (*models.AlertResult, error)
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type incidentService struct {
	repo      IncidentRepository
	scorer    RiskScorer
	logger    *logrus.Logger
	cfg       *config.Config
	publisher notify.AlertPublisher
}

func NewIncidentService(repo IncidentRepository, scorer RiskScorer, logger *logrus.Logger, cfg *config.Config, publisher notify.AlertPublisher) IncidentService {
	return &incidentService{
		repo:      repo,
		scorer:    scorer,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
	}
}

// ReportAlert оценивает тревогу, сохраняет инцидент и для High/Medium
// ставит уведомление в очередь доставки
func (s *incidentService) ReportAlert(ctx context.Context, input models.AlertInput) (*models.AlertResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ReportAlert",
	})
	log.Info("Processing incoming SOS alert")

	assessment, err := s.scorer.Score(ctx, input.AudioPath, input.TextMessage)
	if err != nil {
		log.WithError(err).Error("Risk scoring failed")
		return nil, fmt.Errorf("service: could not score alert: %w", err)
	}

	lat, lon := splitLocation(input.Location)

	detailsJSON, err := json.Marshal(assessment.Details)
	if err != nil {
		return nil, fmt.Errorf("service: could not marshal assessment details: %w", err)
	}

	incident := &models.Incident{
		Latitude:  lat,
		Longitude: lon,
		Severity:  assessment.Severity,
		Details:   string(detailsJSON),
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}

	// Кеш списка больше не актуален
	if err := s.repo.InvalidateIncidentListCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident list cache")
	}

	if assessment.Severity == risk.SeverityHigh || assessment.Severity == risk.SeverityMedium {
		event := notify.AlertEvent{
			IncidentID: incident.ID,
			Severity:   assessment.Severity,
			Confidence: assessment.Confidence,
			Location:   input.Location,
			MapLink:    fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s,%s", lat, lon),
			Timestamp:  time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			// Доставка уведомления не должна ронять прием тревоги
			log.WithError(err).Error("Failed to publish alert notification")
		}
	}

	log.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"severity":    assessment.Severity,
	}).Info("Alert processed successfully")

	return &models.AlertResult{
		Severity:   assessment.Severity,
		Confidence: assessment.Confidence,
		Message:    fmt.Sprintf("Alert received and classified as %s.", assessment.Severity),
		IncidentID: incident.ID,
		Details:    assessment.Details,
	}, nil
}

// ListIncidents возвращает все инциденты для диспетчерской панели
func (s *incidentService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})

	// Сначала пробуем кеш
	cached, err := s.repo.GetIncidentListFromCache(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident list cache")
	} else if cached != nil {
		log.WithField("count", len(cached)).Debug("Incident list served from cache")
		return cached, nil
	}

	incidents, err := s.repo.ListIncidents(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	if err := s.repo.SetIncidentListCache(ctx, incidents); err != nil {
		log.WithError(err).Warn("Failed to cache incident list")
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// Login сверяет учетные данные диспетчера. По контракту прототипа
// возвращаемый токен - тот же общий секрет панели.
func (s *incidentService) Login(ctx context.Context, username, password string) (string, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "Login",
		"username": username,
	})

	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		log.WithError(err).Warn("Admin lookup failed")
		return "", ErrInvalidCredentials
	}
	if admin == nil || admin.Password != password {
		log.Warn("Invalid admin credentials")
		return "", ErrInvalidCredentials
	}

	log.Info("Admin logged in")
	return admin.Password, nil
}

// splitLocation разбирает строку "lat,lon"; при некорректном формате
// остаются нули, как в исходном приемнике
func splitLocation(location string) (lat, lon string) {
	lat, lon = "0.0", "0.0"
	if i := strings.Index(location, ","); i >= 0 {
		lat = strings.TrimSpace(location[:i])
		lon = strings.TrimSpace(location[i+1:])
	}
	return lat, lon
}
