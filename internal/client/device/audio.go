package device

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Параметры записи совпадают со стандартизацией на бэкенде
const (
	captureSampleRate = 22050
	captureChannels   = 1
)

// AudioRecorder открывает микрофон и начинает запись. Остановку
// всегда вызывает владелец по своему таймеру, рекордер сам не
// ограничивает длительность.
type AudioRecorder interface {
	Start(ctx context.Context) (AudioCapture, error)
}

// AudioCapture - идущая запись. Stop завершает ее и возвращает
// единый WAV-блоб; вызывается ровно один раз.
type AudioCapture interface {
	Stop() ([]byte, error)
}

// FFmpegRecorder пишет звук внешним ffmpeg в temp-файл.
// WAV-заголовок ffmpeg корректно дописывает по SIGINT.
type FFmpegRecorder struct {
	binary string
	device string
	logger *logrus.Logger
}

func NewFFmpegRecorder(device string, logger *logrus.Logger) *FFmpegRecorder {
	return &FFmpegRecorder{
		binary: "ffmpeg",
		device: device,
		logger: logger,
	}
}

func (r *FFmpegRecorder) Start(ctx context.Context) (AudioCapture, error) {
	if _, err := exec.LookPath(r.binary); err != nil {
		return nil, ErrUnsupported
	}

	tmp, err := os.CreateTemp("", "sos_capture_*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", captureInputFormat(),
		"-i", r.device,
		"-ar", fmt.Sprintf("%d", captureSampleRate),
		"-ac", fmt.Sprintf("%d", captureChannels),
		"-y", path,
	}
	cmd := exec.CommandContext(ctx, r.binary, args...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: cannot open microphone: %v", ErrPermissionDenied, err)
	}

	r.logger.WithField("component", "device").Debug("Microphone capture started")
	return &ffmpegCapture{cmd: cmd, path: path}, nil
}

type ffmpegCapture struct {
	cmd  *exec.Cmd
	path string
}

func (c *ffmpegCapture) Stop() ([]byte, error) {
	defer os.Remove(c.path)

	if err := c.cmd.Process.Signal(os.Interrupt); err != nil {
		c.cmd.Process.Kill()
	}
	// Код выхода после прерывания не интересен, важен сам файл
	c.cmd.Wait()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read captured audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: microphone produced no data", ErrPermissionDenied)
	}
	return data, nil
}

// captureInputFormat выбирает аудиоподсистему под платформу
func captureInputFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "alsa"
	}
}
