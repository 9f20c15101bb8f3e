package dashboard

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shenikar/sos_assistance_system/internal/client/admin"
	"github.com/shenikar/sos_assistance_system/internal/client/api"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, chan tea.Msg) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("admin-secret") != "police123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 5, "timestamp": "2026-08-29T10:00:00Z", "latitude": "12.9", "longitude": "77.6", "severity": "High"},
			{"id": 7, "timestamp": "2026-08-29T10:05:00Z", "latitude": "55.75", "longitude": "37.61", "severity": "Medium"}
		]`)
	}))
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := NewApp(admin.NewGate(), api.NewClient(srv.URL, logger), logger)

	msgs := make(chan tea.Msg, 16)
	app.SetSender(func(msg tea.Msg) { msgs <- msg })
	return app, msgs
}

func typeString(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestApp_WrongSecretShowsNoticeKeepsInput(t *testing.T) {
	app, _ := newTestApp(t)

	typeString(app, "police124")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, app.gate.Authenticated())
	assert.Equal(t, "Incorrect admin secret", app.notice)
	// Ввод не очищается при неверном секрете
	assert.Equal(t, "police124", app.secretInput)

	// esc закрывает уведомление, ввод остается
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, app.notice)
	assert.Equal(t, "police124", app.secretInput)

	// Исправляем последний символ и входим
	app.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	typeString(app, "3")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, app.gate.Authenticated())

	app.unmountPoller()
}

func TestApp_LoginMountsPollerAndAppliesIncidents(t *testing.T) {
	app, msgs := newTestApp(t)

	typeString(app, "police123")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, app.gate.Authenticated())
	require.NotNil(t, app.poller)

	// Немедленный запрос при монтировании доставляет набор в UI
	select {
	case msg := <-msgs:
		app.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no incidents message from poller")
	}

	require.Len(t, app.incidents, 2)
	// Набор приходит отсортированным: новые первыми
	assert.Equal(t, int64(7), app.incidents[0].ID)
	assert.Equal(t, int64(5), app.incidents[1].ID)

	view := app.View()
	assert.Contains(t, view, "Live Incident Dashboard")
	assert.Contains(t, view, "55.75, 37.61")

	app.unmountPoller()
}

func TestApp_LogoutUnmountsPollerAndClearsData(t *testing.T) {
	app, msgs := newTestApp(t)

	typeString(app, "police123")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case msg := <-msgs:
		app.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no incidents message from poller")
	}
	require.NotEmpty(t, app.incidents)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})

	assert.False(t, app.gate.Authenticated())
	assert.Nil(t, app.poller)
	assert.Nil(t, app.incidents)

	// Запоздавший набор после размонтирования не применяется
	app.Update(incidentsMsg{{ID: 9}})
	assert.Nil(t, app.incidents)
}
