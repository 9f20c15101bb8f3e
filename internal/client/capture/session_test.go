package capture

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/sos_assistance_system/internal/client/api"
	"github.com/shenikar/sos_assistance_system/internal/client/device"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLogger - логгер без вывода для тестов
func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeLocations struct {
	loc   device.Location
	err   error
	calls int32
}

func (f *fakeLocations) Current(ctx context.Context) (device.Location, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.loc, f.err
}

type fakeCapture struct {
	data  []byte
	err   error
	stops int32
}

func (f *fakeCapture) Stop() ([]byte, error) {
	atomic.AddInt32(&f.stops, 1)
	return f.data, f.err
}

type fakeRecorder struct {
	capture  *fakeCapture
	startErr error
	starts   int32
	// onStart вызывается внутри Start, до возврата (для проверки
	// блокировок во время записи)
	onStart func()
}

func (f *fakeRecorder) Start(ctx context.Context) (device.AudioCapture, error) {
	atomic.AddInt32(&f.starts, 1)
	if f.onStart != nil {
		f.onStart()
	}
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.capture, nil
}

type fakeSubmitter struct {
	result *api.SubmitResult
	err    error
	calls  int32

	gotLat   float64
	gotLon   float64
	gotAudio []byte
	gotText  string
}

func (f *fakeSubmitter) SubmitAlert(ctx context.Context, lat, lon float64, audio []byte, text string) (*api.SubmitResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.gotLat, f.gotLon, f.gotAudio, f.gotText = lat, lon, audio, text
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// newTestSession собирает сессию с фейковыми устройствами и короткой
// записью, чтобы тесты не ждали настоящие 3 секунды
func newTestSession(loc *fakeLocations, rec *fakeRecorder, sub *fakeSubmitter, onStatus func(Status)) *Session {
	s := NewSession(loc, rec, sub, newTestLogger(), onStatus)
	s.recordFor = 10 * time.Millisecond
	return s
}

func TestTrigger_LocationDenied_NeverRecords(t *testing.T) {
	loc := &fakeLocations{err: device.ErrPermissionDenied}
	rec := &fakeRecorder{capture: &fakeCapture{data: []byte("wav")}}
	sub := &fakeSubmitter{}

	var seen []Status
	s := newTestSession(loc, rec, sub, func(st Status) { seen = append(seen, st) })

	final, err := s.Trigger(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusLocationDenied, final)
	assert.Equal(t, "Location Access Denied", final.String())

	// До записи и отправки дело не дошло
	assert.EqualValues(t, 0, rec.starts)
	assert.EqualValues(t, 0, sub.calls)
	assert.NotContains(t, seen, StatusRecording)
}

func TestTrigger_GeolocationUnsupported_SameAsDenied(t *testing.T) {
	// Рантайм без геолокации ведет себя как отказ в доступе
	loc := &fakeLocations{err: device.ErrUnsupported}
	rec := &fakeRecorder{capture: &fakeCapture{data: []byte("wav")}}
	sub := &fakeSubmitter{}

	s := newTestSession(loc, rec, sub, nil)
	final, err := s.Trigger(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusLocationDenied, final)
	assert.EqualValues(t, 0, rec.starts)
}

func TestTrigger_MicDenied_NoSubmit(t *testing.T) {
	loc := &fakeLocations{loc: device.Location{Latitude: 12.9, Longitude: 77.6}}
	rec := &fakeRecorder{startErr: device.ErrPermissionDenied}
	sub := &fakeSubmitter{}

	s := newTestSession(loc, rec, sub, nil)
	final, err := s.Trigger(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusMicDenied, final)
	assert.Equal(t, "Mic Access Denied", final.String())
	assert.EqualValues(t, 0, sub.calls)
}

func TestTrigger_HappyPath(t *testing.T) {
	// Сценарий: координаты получены, запись прошла, сервер оценил
	// тревогу как High с уверенностью 0.92 и инцидентом 42
	loc := &fakeLocations{loc: device.Location{Latitude: 12.9, Longitude: 77.6}}
	cap := &fakeCapture{data: []byte("fake-wav-data")}
	rec := &fakeRecorder{capture: cap}
	sub := &fakeSubmitter{result: &api.SubmitResult{
		Severity:   "High",
		Confidence: 0.92,
		IncidentID: "42",
	}}

	var seen []Status
	s := newTestSession(loc, rec, sub, func(st Status) { seen = append(seen, st) })
	require.NoError(t, s.SetTextMessage("I am being followed"))

	final, err := s.Trigger(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, final)

	// Шаги шли строго по порядку
	assert.Equal(t, []Status{StatusAwaitingLocation, StatusRecording, StatusUploading, StatusSubmitted}, seen)

	// Отправка ровно одна и только с координатами и аудио
	assert.EqualValues(t, 1, sub.calls)
	assert.Equal(t, 12.9, sub.gotLat)
	assert.Equal(t, 77.6, sub.gotLon)
	assert.Equal(t, []byte("fake-wav-data"), sub.gotAudio)
	assert.Equal(t, "I am being followed", sub.gotText)

	// Остановка записи ровно один раз
	assert.EqualValues(t, 1, cap.stops)

	// Результат сохранен для показа
	res := s.Result()
	require.NotNil(t, res)
	assert.Equal(t, "High", res.Severity)
	assert.Equal(t, 0.92, res.Confidence)
	assert.Equal(t, "42", res.IncidentID)
}

func TestTrigger_StopFiredExactlyOnce(t *testing.T) {
	loc := &fakeLocations{loc: device.Location{Latitude: 1, Longitude: 2}}
	cap := &fakeCapture{data: []byte("wav")}
	rec := &fakeRecorder{capture: cap}
	sub := &fakeSubmitter{result: &api.SubmitResult{Severity: "Low"}}

	s := newTestSession(loc, rec, sub, nil)

	start := time.Now()
	_, err := s.Trigger(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.EqualValues(t, 1, cap.stops)
	// Остановку диктует только таймер фиксированной длительности
	assert.GreaterOrEqual(t, elapsed, s.recordFor)
}

func TestTrigger_SubmitFailed_Rearms(t *testing.T) {
	loc := &fakeLocations{loc: device.Location{Latitude: 1, Longitude: 2}}
	rec := &fakeRecorder{capture: &fakeCapture{data: []byte("wav")}}
	sub := &fakeSubmitter{err: errors.New("connection refused")}

	s := newTestSession(loc, rec, sub, nil)

	final, err := s.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitFailed, final)
	assert.Equal(t, "Server Error", final.String())
	assert.Nil(t, s.Result())

	// Триггер снова взведен: следующая попытка запускается
	sub.err = nil
	sub.result = &api.SubmitResult{Severity: "Medium", Confidence: 0.6}
	final, err = s.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, final)
	assert.EqualValues(t, 2, sub.calls)
}

func TestTrigger_BusyDuringRecording(t *testing.T) {
	loc := &fakeLocations{loc: device.Location{Latitude: 1, Longitude: 2}}

	var busyErr error
	var textErr error
	var s *Session
	rec := &fakeRecorder{
		capture: &fakeCapture{data: []byte("wav")},
		onStart: func() {
			// Пока идет запись: повторный триггер отклоняется,
			// текст заморожен
			_, busyErr = s.Trigger(context.Background())
			textErr = s.SetTextMessage("edited mid-flight")
		},
	}
	sub := &fakeSubmitter{result: &api.SubmitResult{Severity: "Low"}}

	s = newTestSession(loc, rec, sub, nil)

	final, err := s.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, final)

	assert.ErrorIs(t, busyErr, ErrSessionBusy)
	assert.ErrorIs(t, textErr, ErrTextLocked)
	// Параллельная сессия не стартовала
	assert.EqualValues(t, 1, loc.calls)
	assert.EqualValues(t, 1, sub.calls)
}

func TestTrigger_NewSessionDropsOldResult(t *testing.T) {
	loc := &fakeLocations{loc: device.Location{Latitude: 1, Longitude: 2}}
	rec := &fakeRecorder{capture: &fakeCapture{data: []byte("wav")}}
	sub := &fakeSubmitter{result: &api.SubmitResult{Severity: "High", Confidence: 0.9, IncidentID: "7"}}

	s := newTestSession(loc, rec, sub, nil)

	_, err := s.Trigger(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s.Result())

	// Следующий триггер уничтожает прошлую сессию: при отказе
	// геолокации старый результат не всплывает
	loc.err = device.ErrPermissionDenied
	final, err := s.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusLocationDenied, final)
	assert.Nil(t, s.Result())
}
