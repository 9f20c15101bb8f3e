package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shenikar/sos_assistance_system/internal/client/admin"
	"github.com/shenikar/sos_assistance_system/internal/client/api"
	"github.com/shenikar/sos_assistance_system/internal/client/poll"
	"github.com/sirupsen/logrus"
)

// incidentsMsg приносит в UI свежий набор инцидентов от опросчика
type incidentsMsg []api.Incident

// App - bubbletea-модель клиента панели: экран входа с проверкой
// секрета через Gate, затем живая лента. Опрос монтируется при входе
// и гарантированно размонтируется при выходе или закрытии.
type App struct {
	gate   *admin.Gate
	client *api.Client
	logger *logrus.Logger
	send   func(tea.Msg)

	poller *poll.Poller

	secretInput string
	notice      string // блокирующее уведомление о неверном секрете
	incidents   []api.Incident
	width       int
}

func NewApp(gate *admin.Gate, client *api.Client, logger *logrus.Logger) *App {
	return &App{
		gate:   gate,
		client: client,
		logger: logger,
	}
}

// SetSender задает канал доставки сообщений в запущенную программу.
// Вызывается после tea.NewProgram, до Run.
func (a *App) SetSender(send func(tea.Msg)) {
	a.send = send
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case incidentsMsg:
		// Набор уже отсортирован опросчиком; после logout сообщений
		// не бывает - Stop дожидается остановки цикла
		if a.gate.Authenticated() {
			a.incidents = msg
		}
		return a, nil

	case tea.KeyMsg:
		if !a.gate.Authenticated() {
			return a.updateLogin(msg)
		}
		return a.updateDashboard(msg)
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if a.notice != "" {
			// Закрываем уведомление, ввод не очищается
			a.notice = ""
			return a, nil
		}
		return a, tea.Quit
	case "enter":
		if a.gate.AttemptLogin(a.secretInput) {
			a.notice = ""
			a.secretInput = ""
			a.mountPoller()
			return a, nil
		}
		a.notice = "Incorrect admin secret"
		return a, nil
	case "backspace":
		if len(a.secretInput) > 0 {
			a.secretInput = a.secretInput[:len(a.secretInput)-1]
		}
		return a, nil
	default:
		if len(msg.Runes) > 0 {
			a.secretInput += string(msg.Runes)
		}
		return a, nil
	}
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		a.unmountPoller()
		return a, tea.Quit
	case "l":
		// Logout: опрос снимается до сброса аутентификации
		a.unmountPoller()
		return a, nil
	}
	return a, nil
}

// mountPoller монтирует цикл опроса ленты
func (a *App) mountPoller() {
	a.poller = poll.New(a.client, a.gate.Secret(), a.logger, func(incidents []api.Incident) {
		if a.send != nil {
			a.send(incidentsMsg(incidents))
		}
	})
	a.poller.Start()
}

// unmountPoller останавливает опрос и закрывает панель
func (a *App) unmountPoller() {
	if a.poller != nil {
		a.poller.Stop()
		a.poller = nil
	}
	a.gate.Logout()
	a.incidents = nil
}

func (a *App) View() string {
	if !a.gate.Authenticated() {
		return a.viewLogin()
	}
	return a.viewDashboard()
}

func (a *App) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Responder Dashboard Login"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("admin secret: "))
	b.WriteString(valueStyle.Render(strings.Repeat("*", len(a.secretInput))))
	b.WriteString("\n")

	if a.notice != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(a.notice))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc: dismiss"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: login | esc: quit"))
	return panelStyle.Render(b.String())
}

func (a *App) viewDashboard() string {
	table := panelStyle.Render(RenderTable(a.incidents))
	markers := panelStyle.Render(RenderMarkers(a.incidents))

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Live Incident Dashboard"),
		table,
		markers,
		helpStyle.Render("l: logout | q: quit"),
	)
}
