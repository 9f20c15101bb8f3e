package risk

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// writeWAV собирает минимальный RIFF/WAVE контейнер с несжатым
// PCM 16 бит из готовых семплов
func writeWAV(t *testing.T, samples []int16, sampleRate, channels int) string {
	t.Helper()

	dataSize := len(samples) * 2
	buf := make([]byte, 0, 44+dataSize)

	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataSize))...)
	buf = append(buf, []byte("WAVE")...)

	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...) // PCM
	buf = append(buf, u16(uint16(channels))...)
	buf = append(buf, u32(uint32(sampleRate))...)
	buf = append(buf, u32(uint32(sampleRate*channels*2))...)
	buf = append(buf, u16(uint16(channels*2))...)
	buf = append(buf, u16(16)...)

	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataSize))...)
	for _, s := range samples {
		buf = append(buf, u16(uint16(s))...)
	}

	path := filepath.Join(t.TempDir(), "sample.wav")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

// прямоугольный сигнал: постоянная громкость, пересечение нуля на
// каждом семпле
func squareWave(n int, amplitude int16) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = amplitude
		} else {
			samples[i] = -amplitude
		}
	}
	return samples
}

func TestScoreText_PatternTable(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{text: "HELP ME please", want: 0.95},
		{text: "this is an emergency", want: 0.95},
		{text: "sos", want: 0.95},
		{text: "he has a gun", want: 0.90},
		{text: "someone is following me", want: 0.75},
		{text: "I am scared", want: 0.70},
		{text: "I feel unsafe here", want: 0.55},
		{text: "nice weather today", want: 0},
		{text: "   ", want: 0},
		{text: "", want: 0},
	}

	for _, tt := range tests {
		got, _ := scoreText(tt.text)
		assert.Equal(t, tt.want, got, "text %q", tt.text)
	}
}

func TestScoreText_StrongestPatternWins(t *testing.T) {
	// При нескольких совпадениях берется самый сильный маркер
	got, extract := scoreText("I am scared, help me")
	assert.Equal(t, 0.95, got)
	assert.Equal(t, "help me", extract)
}

func TestScore_TextOnlyHigh(t *testing.T) {
	scorer := NewHeuristicScorer(newTestLogger())

	a, err := scorer.Score(context.Background(), "", "help me, he has a knife")

	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, a.Severity)
	assert.Equal(t, 0.95, a.Confidence)
	assert.Equal(t, 0.0, a.Details["audio_confidence"])
	assert.Equal(t, "N/A", a.Details["audio_emotion"])
	assert.Equal(t, 0.95, a.Details["text_confidence_distress"])
}

func TestScore_SeverityThresholds(t *testing.T) {
	scorer := NewHeuristicScorer(newTestLogger())

	// Пограничные веса таблицы: 0.95 - High, 0.75 и 0.55 - Medium
	tests := []struct {
		text string
		want string
	}{
		{text: "help me", want: SeverityHigh},
		{text: "someone followed me", want: SeverityMedium},
		{text: "I got lost", want: SeverityMedium},
		{text: "all good", want: SeverityLow},
	}
	for _, tt := range tests {
		a, err := scorer.Score(context.Background(), "", tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.Severity, "text %q", tt.text)
	}
}

func TestScore_AudioFailureFallsBackToText(t *testing.T) {
	scorer := NewHeuristicScorer(newTestLogger())

	a, err := scorer.Score(context.Background(), "/nonexistent/audio.wav", "help me")

	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, a.Severity)
	assert.Equal(t, 0.95, a.Confidence)
	assert.Contains(t, a.Details, "audio_error")
	assert.Contains(t, a.Details["audio_error"].(string), "Audio processing failed")
}

func TestScore_SilentAudioNoText(t *testing.T) {
	scorer := NewHeuristicScorer(newTestLogger())
	path := writeWAV(t, make([]int16, 8000*3), 8000, 1)

	a, err := scorer.Score(context.Background(), path, "")

	require.NoError(t, err)
	assert.Equal(t, SeverityLow, a.Severity)
	assert.Equal(t, 0.0, a.Confidence)
	assert.Equal(t, "N/A", a.Details["audio_emotion"])
}

func TestScore_LoudSharpAudio(t *testing.T) {
	scorer := NewHeuristicScorer(newTestLogger())
	// Громкий высокочастотный сигнал: loudness и sharpness в насыщении,
	// burstiness нулевая, итог 0.5 + 0.2 = 0.7
	path := writeWAV(t, squareWave(8000*3, 26000), 8000, 1)

	a, err := scorer.Score(context.Background(), path, "")

	require.NoError(t, err)
	assert.Equal(t, SeverityMedium, a.Severity)
	assert.InDelta(t, 0.7, a.Confidence, 0.01)
	assert.Equal(t, "fear", a.Details["audio_emotion"])
}

func TestScore_MaxOfTwoChannels(t *testing.T) {
	scorer := NewHeuristicScorer(newTestLogger())
	path := writeWAV(t, squareWave(8000*3, 26000), 8000, 1)

	// Текстовый канал сильнее аудио: итог берется по тексту
	a, err := scorer.Score(context.Background(), path, "help me")

	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, a.Severity)
	assert.Equal(t, 0.95, a.Confidence)
	assert.InDelta(t, 0.7, a.Details["audio_confidence"].(float64), 0.01)
}

func TestExtractFeatures_ShortRecordingPadded(t *testing.T) {
	// Секундная запись дополняется тишиной до целевой длительности,
	// исходная длительность остается в признаках
	path := writeWAV(t, squareWave(8000, 26000), 8000, 1)

	f, err := extractFeatures(path)

	require.NoError(t, err)
	assert.InDelta(t, 1.0, f.Duration, 0.01)
	// Две трети кадров - тишина, средняя громкость проседает
	assert.Less(t, f.RMSMean, 0.4)
	assert.Greater(t, f.Peak, 0.7)
}

func TestDecodeWAV_StereoAveragedToMono(t *testing.T) {
	// Противофазные каналы взаимно гасятся при сведении в моно
	n := 1000
	samples := make([]int16, 0, n*2)
	for i := 0; i < n; i++ {
		samples = append(samples, 16000, -16000)
	}
	path := writeWAV(t, samples, 8000, 2)

	mono, sampleRate, err := decodeWAV(path)

	require.NoError(t, err)
	assert.Equal(t, 8000, sampleRate)
	require.Len(t, mono, n)
	for _, v := range mono {
		assert.InDelta(t, 0, v, 0.001)
	}
}

func TestDecodeWAV_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is not audio"), 0o644))

	_, _, err := decodeWAV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a RIFF/WAVE file")
}
