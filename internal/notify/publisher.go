package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	alertQueueKey = "alert_notifications"
)

// AlertEvent - уведомление о тревоге High/Medium для дежурных служб.
// Заменяет собой email-рассылку прототипа.
type AlertEvent struct {
	IncidentID int64     `json:"incident_id"`
	Severity   string    `json:"severity"`
	Confidence float64   `json:"confidence"`
	Location   string    `json:"location"`
	MapLink    string    `json:"map_link"`
	Timestamp  time.Time `json:"timestamp"`
}

// AlertPublisher - интерфейс для публикации уведомлений о тревогах
type AlertPublisher interface {
	Publish(ctx context.Context, event AlertEvent) error
}

// RedisAlertPublisher - реализация AlertPublisher, использующая Redis
type RedisAlertPublisher struct {
	redisClient *redis.Client
}

// NewRedisAlertPublisher создает новый RedisAlertPublisher
func NewRedisAlertPublisher(client *redis.Client) *RedisAlertPublisher {
	return &RedisAlertPublisher{
		redisClient: client,
	}
}

// Publish публикует уведомление в очередь Redis
func (p *RedisAlertPublisher) Publish(ctx context.Context, event AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	// LPUSH добавляет событие в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, alertQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert event to Redis: %w", err)
	}
	return nil
}
