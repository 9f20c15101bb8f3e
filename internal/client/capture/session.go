package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shenikar/sos_assistance_system/internal/client/api"
	"github.com/shenikar/sos_assistance_system/internal/client/device"
	"github.com/sirupsen/logrus"
)

// RecordDuration - фиксированная длительность записи. Пользователь ее
// не настраивает, остановка идет строго по таймеру.
const RecordDuration = 3000 * time.Millisecond

// ErrSessionBusy возвращается при повторном триггере во время
// идущей сессии: параллельных сессий не бывает
var ErrSessionBusy = errors.New("capture session already in progress")

// ErrTextLocked возвращается при попытке изменить текст во время
// записи или отправки
var ErrTextLocked = errors.New("text message is locked while recording or uploading")

// Submitter отправляет собранную тревогу на бэкенд
type Submitter interface {
	SubmitAlert(ctx context.Context, lat, lon float64, audio []byte, textMessage string) (*api.SubmitResult, error)
}

// Result - сохраненный итог успешной отправки
type Result struct {
	Severity   string
	Confidence float64
	IncidentID string
}

// Session - конечный автомат одной попытки SOS:
// Idle -> AwaitingLocation -> Recording -> Uploading -> Submitted,
// с ветками отказов LocationDenied/MicDenied/SubmitFailed.
// Шаги выполняются строго по порядку, отправка - максимум один раз.
type Session struct {
	locations device.LocationProvider
	recorder  device.AudioRecorder
	submitter Submitter
	logger    *logrus.Logger

	// Фиксированная длительность записи, в тестах укорачивается
	recordFor time.Duration

	// Уведомление о каждой смене статуса (для UI), может быть nil
	onStatus func(Status)

	mu       sync.Mutex
	busy     bool
	status   Status
	location *device.Location
	audio    []byte
	text     string
	result   *Result
}

func NewSession(locations device.LocationProvider, recorder device.AudioRecorder, submitter Submitter, logger *logrus.Logger, onStatus func(Status)) *Session {
	return &Session{
		locations: locations,
		recorder:  recorder,
		submitter: submitter,
		logger:    logger,
		recordFor: RecordDuration,
		onStatus:  onStatus,
		status:    StatusIdle,
	}
}

// Status возвращает текущее состояние сессии
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result возвращает итог последней успешной отправки или nil
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SetTextMessage меняет сопроводительный текст. Во время записи и
// отправки текст заморожен.
func (s *Session) SetTextMessage(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusRecording || s.status == StatusUploading {
		return ErrTextLocked
	}
	s.text = text
	return nil
}

// TextMessage возвращает текущий сопроводительный текст
func (s *Session) TextMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Trigger запускает одну сессию захвата и доводит ее до терминального
// состояния. Внешней отмены нет: начатая сессия заканчивается только
// Submitted/SubmitFailed либо одной из веток отказа устройств.
// Повторный вызов во время идущей сессии возвращает ErrSessionBusy.
func (s *Session) Trigger(ctx context.Context) (Status, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.status, ErrSessionBusy
	}
	// Прошлая сессия уничтожается: история не хранится
	s.busy = true
	s.location = nil
	s.audio = nil
	s.result = nil
	s.mu.Unlock()

	log := s.logger.WithField("component", "capture")
	log.Info("SOS capture session triggered")

	// Шаг 1: одноразовый запрос геолокации. Отсутствие датчика
	// эквивалентно отказу в доступе.
	s.setStatus(StatusAwaitingLocation)
	loc, err := s.locations.Current(ctx)
	if err != nil {
		log.WithError(err).Warn("Geolocation unavailable")
		return s.finish(StatusLocationDenied), nil
	}
	s.mu.Lock()
	s.location = &loc
	s.mu.Unlock()

	// Шаг 2: запись фиксированной длительности
	s.setStatus(StatusRecording)
	rec, err := s.recorder.Start(ctx)
	if err != nil {
		log.WithError(err).Warn("Microphone unavailable")
		return s.finish(StatusMicDenied), nil
	}

	// Остановку диктует только таймер: он сработает ровно один раз
	// независимо от того, шли ли данные с микрофона
	timer := time.NewTimer(s.recordFor)
	<-timer.C
	audio, err := rec.Stop()
	if err != nil {
		log.WithError(err).Warn("Recording failed")
		return s.finish(StatusMicDenied), nil
	}
	s.mu.Lock()
	s.audio = audio
	text := s.text
	s.mu.Unlock()

	// Шаг 3: единственная попытка отправки, без повторов
	s.setStatus(StatusUploading)
	res, err := s.submitter.SubmitAlert(ctx, loc.Latitude, loc.Longitude, audio, text)
	if err != nil {
		// Сбой сети и отказ сервера для репортера неразличимы
		log.WithError(err).Error("Alert submission failed")
		return s.finish(StatusSubmitFailed), nil
	}

	s.mu.Lock()
	s.result = &Result{
		Severity:   res.Severity,
		Confidence: res.Confidence,
		IncidentID: res.IncidentID,
	}
	s.mu.Unlock()

	log.WithFields(logrus.Fields{
		"severity":    res.Severity,
		"incident_id": res.IncidentID,
	}).Info("Alert submitted")
	return s.finish(StatusSubmitted), nil
}

// finish переводит сессию в терминальное состояние и снова
// взводит триггер
func (s *Session) finish(st Status) Status {
	s.mu.Lock()
	s.status = st
	s.busy = false
	cb := s.onStatus
	s.mu.Unlock()
	if cb != nil {
		cb(st)
	}
	return st
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	cb := s.onStatus
	s.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}
