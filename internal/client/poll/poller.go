package poll

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shenikar/sos_assistance_system/internal/client/api"
	"github.com/sirupsen/logrus"
)

// DefaultInterval - фиксированный период опроса ленты инцидентов
const DefaultInterval = 5000 * time.Millisecond

// Fetcher запрашивает ленту инцидентов у бэкенда
type Fetcher interface {
	FetchIncidents(ctx context.Context, secret string) ([]api.Incident, error)
}

// Poller - цикл опроса диспетчерской панели. Пока панель смонтирована:
// немедленный запрос при старте, дальше с фиксированным периодом.
// Каждый успешный ответ целиком заменяет локальный набор (без
// инкрементальных слияний) и отдается подписчику отсортированным по
// id по убыванию. Неудачный запрос только логируется: прежний набор
// остается на экране, опрос продолжается.
type Poller struct {
	fetcher  Fetcher
	secret   string
	interval time.Duration
	logger   *logrus.Logger
	onUpdate func([]api.Incident)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(fetcher Fetcher, secret string, logger *logrus.Logger, onUpdate func([]api.Incident)) *Poller {
	return &Poller{
		fetcher:  fetcher,
		secret:   secret,
		interval: DefaultInterval,
		logger:   logger,
		onUpdate: onUpdate,
	}
}

// Start монтирует опрос: сразу один запрос, затем по таймеру.
// Повторный Start без Stop игнорируется.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.fetchOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchOnce(ctx)
		}
	}
}

func (p *Poller) fetchOnce(ctx context.Context) {
	incidents, err := p.fetcher.FetchIncidents(ctx, p.secret)
	if err != nil {
		// Прежние данные остаются на экране, опрос не прерывается
		p.logger.WithError(err).Warn("Incident poll failed, keeping previous data")
		return
	}

	// Результат размонтированного опроса не применяется
	if ctx.Err() != nil {
		return
	}

	SortIncidents(incidents)
	if p.onUpdate != nil {
		p.onUpdate(incidents)
	}
}

// Stop размонтирует опрос. После возврата гарантированно не будет ни
// нового запроса, ни применения результата уже начатого.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SortIncidents упорядочивает набор по id по убыванию (новые первыми)
// независимо от порядка ответа бэкенда
func SortIncidents(incidents []api.Incident) {
	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].ID > incidents[j].ID
	})
}
