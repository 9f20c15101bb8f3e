package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/sos_assistance_system/internal/config"
	"github.com/sirupsen/logrus"
)

// AlertWorker - воркер доставки уведомлений о тревогах.
// Снимает события из очереди Redis и отправляет их на NOTIFY_URL
// (вебхук дежурной службы) с подписью и повторными попытками.
type AlertWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewAlertWorker создает новый AlertWorker
func NewAlertWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *AlertWorker {
	return &AlertWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.NotifyTimeout,
		},
	}
}

// Start запускает горутину для обработки очереди уведомлений
func (w *AlertWorker) Start(ctx context.Context) {
	w.logger.Info("Starting alert notification worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping alert notification worker.")
				return
			default:
				// BRPOP - блокирующее извлечение из правой части очереди,
				// 0 означает бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, alertQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue // Контекст отменен, это не ошибка Redis
					}
					w.logger.WithError(err).Error("Failed to pop alert event from Redis")
					time.Sleep(w.cfg.NotifyTimeout) // Ждем перед повторной попыткой
					continue
				}

				// result[0] - ключ, result[1] - значение
				payload := result[1]
				var event AlertEvent
				if err := json.Unmarshal([]byte(payload), &event); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal alert event from Redis")
					continue
				}

				w.deliver(ctx, event, payload)
			}
		}
	}()
}

func (w *AlertWorker) deliver(ctx context.Context, event AlertEvent, rawPayload string) {
	log := w.logger.WithField("incident_id", event.IncidentID).WithField("severity", event.Severity)
	log.Debug("Delivering alert notification...")

	if w.cfg.NotifyURL == "" {
		log.Warn("Notify URL is not configured. Skipping alert notification delivery.")
		return
	}

	maxRetries := w.cfg.NotifyMaxRetries
	baseDelay := w.cfg.NotifyBaseDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", w.cfg.NotifyURL, bytes.NewBufferString(rawPayload))
		if err != nil {
			log.WithError(err).Errorf("Failed to create notification request. Retries left: %d", maxRetries-1-i)
			continue
		}

		req.Header.Set("Content-Type", "application/json")

		// Добавляем HMAC подпись, если NOTIFY_SECRET задан
		if w.cfg.NotifySecret != "" {
			signature := generateHMACSHA256(rawPayload, w.cfg.NotifySecret)
			req.Header.Set("X-Notify-Signature", signature)
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to send notification. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
			time.Sleep(baseDelay)
			baseDelay *= 2 // Экспоненциальная задержка
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Info("Alert notification delivered successfully.")
			return
		}
		log.Warnf("Notification delivery failed with status code %d. Retrying in %v. Retries left: %d", resp.StatusCode, baseDelay, maxRetries-1-i)
		time.Sleep(baseDelay)
		baseDelay *= 2 // Экспоненциальная задержка
	}

	log.Errorf("Failed to deliver alert notification after %d retries.", maxRetries)
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
