package poll

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/sos_assistance_system/internal/client/api"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// spyFetcher отдает заранее подготовленные ответы по очереди и считает
// обращения. Последний ответ повторяется до бесконечности.
type spyFetcher struct {
	mu        sync.Mutex
	responses []fetchResponse
	calls     int32
	gotSecret string
}

type fetchResponse struct {
	incidents []api.Incident
	err       error
}

func (f *spyFetcher) FetchIncidents(ctx context.Context, secret string) ([]api.Incident, error) {
	n := atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotSecret = secret
	idx := int(n) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	r := f.responses[idx]
	return r.incidents, r.err
}

func (f *spyFetcher) secret() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotSecret
}

// collector потокобезопасно копит все применения onUpdate
type collector struct {
	mu      sync.Mutex
	updates [][]api.Incident
}

func (c *collector) apply(incidents []api.Incident) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, incidents)
}

func (c *collector) last() []api.Incident {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.updates) == 0 {
		return nil
	}
	return c.updates[len(c.updates)-1]
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.updates)
}

func (c *collector) at(i int) []api.Incident {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates[i]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func ids(incidents []api.Incident) []int64 {
	out := make([]int64, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, inc.ID)
	}
	return out
}

func TestPoller_ImmediateFetchOnStart(t *testing.T) {
	fetcher := &spyFetcher{responses: []fetchResponse{
		{incidents: []api.Incident{{ID: 1, Severity: "Low"}}},
	}}
	col := &collector{}

	p := New(fetcher, "police123", newTestLogger(), col.apply)
	p.interval = time.Hour // по таймеру в этом тесте дойти не должно
	p.Start()
	defer p.Stop()

	waitFor(t, func() bool { return col.count() >= 1 })
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetcher.calls))
	assert.Equal(t, "police123", fetcher.secret())
	assert.Equal(t, []int64{1}, ids(col.last()))
}

func TestPoller_SortsNewestFirst(t *testing.T) {
	// Бэкенд отдал 5, потом 7: на экран попадают 7, 5
	fetcher := &spyFetcher{responses: []fetchResponse{
		{incidents: []api.Incident{
			{ID: 5, Severity: "Low"},
			{ID: 7, Severity: "High"},
		}},
	}}
	col := &collector{}

	p := New(fetcher, "police123", newTestLogger(), col.apply)
	p.interval = time.Hour
	p.Start()
	defer p.Stop()

	waitFor(t, func() bool { return col.count() >= 1 })
	assert.Equal(t, []int64{7, 5}, ids(col.last()))
}

func TestPoller_FailureKeepsPreviousData(t *testing.T) {
	fetcher := &spyFetcher{responses: []fetchResponse{
		{incidents: []api.Incident{{ID: 3}}},
		{err: errors.New("503 service unavailable")},
		{incidents: []api.Incident{{ID: 3}, {ID: 4}}},
	}}
	col := &collector{}

	p := New(fetcher, "police123", newTestLogger(), col.apply)
	p.interval = 10 * time.Millisecond
	p.Start()
	defer p.Stop()

	// Сбой не порождает применения: после первого успеха следующее
	// обновление приходит только с новым успешным ответом
	waitFor(t, func() bool { return col.count() >= 2 })
	assert.Equal(t, []int64{3}, ids(col.at(0)))
	assert.Equal(t, []int64{4, 3}, ids(col.last()))
	// Запросов было минимум три: успех, сбой, успех
	assert.GreaterOrEqual(t, atomic.LoadInt32(&fetcher.calls), int32(3))
}

func TestPoller_StopHaltsFetching(t *testing.T) {
	fetcher := &spyFetcher{responses: []fetchResponse{
		{incidents: []api.Incident{{ID: 1}}},
	}}
	col := &collector{}

	p := New(fetcher, "police123", newTestLogger(), col.apply)
	p.interval = 5 * time.Millisecond
	p.Start()

	waitFor(t, func() bool { return atomic.LoadInt32(&fetcher.calls) >= 2 })
	p.Stop()

	// После возврата Stop ни запросов, ни применений больше нет
	callsAfter := atomic.LoadInt32(&fetcher.calls)
	updatesAfter := col.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, callsAfter, atomic.LoadInt32(&fetcher.calls))
	assert.Equal(t, updatesAfter, col.count())
}

func TestPoller_StartStopIdempotent(t *testing.T) {
	fetcher := &spyFetcher{responses: []fetchResponse{
		{incidents: []api.Incident{{ID: 1}}},
	}}

	p := New(fetcher, "police123", newTestLogger(), nil)
	p.interval = time.Hour

	// Повторный Stop и Stop без Start не паникуют
	p.Stop()
	p.Start()
	p.Start()
	p.Stop()
	p.Stop()

	require.EqualValues(t, 1, atomic.LoadInt32(&fetcher.calls))
}

func TestSortIncidents(t *testing.T) {
	incidents := []api.Incident{{ID: 2}, {ID: 9}, {ID: 5}}
	SortIncidents(incidents)
	assert.Equal(t, []int64{9, 5, 2}, ids(incidents))
}
