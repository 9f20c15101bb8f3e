package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/sos_assistance_system/internal/models"
	"github.com/shenikar/sos_assistance_system/internal/service"
)

const incidentListCacheKey = "incidents:all"

// Короткий TTL: панель опрашивает список каждые 5 секунд,
// кеш лишь гасит параллельные панели
const incidentListCacheTTL = 3 * time.Second

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Create создает новую запись об инциденте в бд.
// ID и timestamp назначает база.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (latitude, longitude, severity, details)
		VALUES ($1, $2, $3, $4) RETURNING id, timestamp;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Latitude,
		incident.Longitude,
		incident.Severity,
		incident.Details,
	).Scan(&incident.ID, &incident.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// ListIncidents возвращает все инциденты, новые первыми
func (r *IncidentRepository) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	query := `
		SELECT id, timestamp, latitude, longitude, severity, details
		FROM incidents
		ORDER BY id DESC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident := &models.Incident{}
		err := rows.Scan(
			&incident.ID,
			&incident.Timestamp,
			&incident.Latitude,
			&incident.Longitude,
			&incident.Severity,
			&incident.Details,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// GetAdminByUsername возвращает учетную запись диспетчера по имени
func (r *IncidentRepository) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	admin := &models.Admin{}
	query := `
		SELECT id, username, password
		FROM admins
		WHERE username = $1;
	`
	err := r.db.QueryRow(ctx, query, username).Scan(&admin.ID, &admin.Username, &admin.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("admin %s not found", username)
		}
		return nil, fmt.Errorf("failed to get admin by username: %w", err)
	}
	return admin, nil
}

// EnsureDefaultAdmin создает учетную запись диспетчера по умолчанию,
// если ее еще нет. Выполняется один раз на старте сервера.
func (r *IncidentRepository) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	query := `
		INSERT INTO admins (username, password)
		VALUES ($1, $2)
		ON CONFLICT (username) DO NOTHING;
	`
	if _, err := r.db.Exec(ctx, query, username, password); err != nil {
		return fmt.Errorf("failed to ensure default admin: %w", err)
	}
	return nil
}

// GetIncidentListFromCache пытается получить список инцидентов из Redis.
// nil без ошибки означает промах кеша.
func (r *IncidentRepository) GetIncidentListFromCache(ctx context.Context) ([]*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, incidentListCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident list from cache: %w", err)
	}

	incidents := make([]*models.Incident, 0)
	if err := json.Unmarshal(val, &incidents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident list from cache: %w", err)
	}
	return incidents, nil
}

// SetIncidentListCache сохраняет список инцидентов в Redis
func (r *IncidentRepository) SetIncidentListCache(ctx context.Context, incidents []*models.Incident) error {
	val, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("failed to marshal incident list for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, incidentListCacheKey, val, incidentListCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident list in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentListCache удаляет список инцидентов из Redis кэша
func (r *IncidentRepository) InvalidateIncidentListCache(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, incidentListCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident list cache: %w", err)
	}
	return nil
}
