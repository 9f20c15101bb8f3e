package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shenikar/sos_assistance_system/internal/client/admin"
	"github.com/shenikar/sos_assistance_system/internal/client/api"
	"github.com/shenikar/sos_assistance_system/internal/client/capture"
	"github.com/shenikar/sos_assistance_system/internal/client/dashboard"
	"github.com/shenikar/sos_assistance_system/internal/client/device"
	"github.com/shenikar/sos_assistance_system/internal/config"
	"github.com/shenikar/sos_assistance_system/pkg/logger"
	"github.com/sirupsen/logrus"
)

const usage = `sosctl - emergency assistance client

Usage:
  sosctl report [text message]   trigger one SOS capture session
  sosctl dashboard               open the responder dashboard
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		logrus.Fatalf("Failed to load client config: %v", err)
	}

	switch os.Args[1] {
	case "report":
		text := ""
		if len(os.Args) > 2 {
			text = os.Args[2]
		}
		runReport(cfg, text)
	case "dashboard":
		runDashboard(cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// runReport проводит одну сессию захвата SOS и печатает итог
func runReport(cfg *config.ClientConfig, text string) {
	log := logger.New(cfg.LogLevel)

	client := api.NewClient(cfg.ServerURL, log)
	locations := locationProvider(cfg, log)
	recorder := device.NewFFmpegRecorder(cfg.AudioDevice, log)

	session := capture.NewSession(locations, recorder, client, log, func(st capture.Status) {
		fmt.Println(st.String())
	})
	if text != "" {
		if err := session.SetTextMessage(text); err != nil {
			log.WithError(err).Warn("Could not set text message")
		}
	}

	final, err := session.Trigger(context.Background())
	if err != nil {
		log.Fatalf("Capture session failed to start: %v", err)
	}

	if final == capture.StatusSubmitted {
		res := session.Result()
		fmt.Printf("Severity: %s\n", res.Severity)
		fmt.Printf("Confidence: %.1f%%\n", res.Confidence*100)
		if res.IncidentID != "" {
			fmt.Printf("Incident: #%s\n", res.IncidentID)
		}
		return
	}
	// Триггер снова взведен, повторная попытка - новый запуск
	os.Exit(1)
}

// runDashboard открывает диспетчерскую панель
func runDashboard(cfg *config.ClientConfig) {
	// Логи глушатся, чтобы не мешать отрисовке TUI
	log := logger.NewSilent()

	client := api.NewClient(cfg.ServerURL, log)
	gate := admin.NewGate()

	app := dashboard.NewApp(gate, client, log)
	prog := tea.NewProgram(app, tea.WithAltScreen())
	app.SetSender(prog.Send)

	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		os.Exit(1)
	}
}

// locationProvider выбирает источник координат: фиксированная точка
// из окружения, иначе внешняя утилита геолокации, иначе рантайм без
// поддержки (сессия уйдет в отказ, как при запрете доступа)
func locationProvider(cfg *config.ClientConfig, log *logrus.Logger) device.LocationProvider {
	if cfg.StaticLat != "" && cfg.StaticLon != "" {
		p, err := device.NewStaticLocationProvider(cfg.StaticLat, cfg.StaticLon)
		if err == nil {
			return p
		}
		log.WithError(err).Warn("Invalid static coordinates, falling back to helper")
	}
	return device.NewExecLocationProvider("termux-location-csv")
}
