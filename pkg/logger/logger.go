package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New создает логгер приложения с JSON-форматом вывода
func New(logLevel string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{})

	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)
	return log
}

// NewSilent создает логгер без вывода. Используется в TUI-режиме,
// чтобы строки логов не ломали отрисовку экрана bubbletea
func NewSilent() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
