package risk

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Запись стандартизируется до фиксированной длительности: короткую
// дополняем тишиной, длинную обрезаем. Значение должно совпадать с
// длительностью записи на стороне репортера.
const targetDurationSec = 3.0

const analysisFrameSize = 1024

// audioFeatures - сводные характеристики записи, по которым
// оценивается уровень дистресса
type audioFeatures struct {
	RMSMean  float64 // средняя громкость по кадрам
	RMSStd   float64 // разброс громкости (крик/всплески)
	ZCR      float64 // доля пересечений нуля (высокочастотность)
	Peak     float64 // пиковая амплитуда
	Duration float64 // длительность до стандартизации, сек
}

// extractFeatures читает WAV-файл (PCM 16 бит) и считает признаки
func extractFeatures(path string) (*audioFeatures, error) {
	samples, sampleRate, err := decodeWAV(path)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 || len(samples) == 0 {
		return nil, fmt.Errorf("empty audio stream in %s", path)
	}

	duration := float64(len(samples)) / float64(sampleRate)

	// Дополняем или обрезаем до целевой длительности
	required := int(targetDurationSec * float64(sampleRate))
	if len(samples) < required {
		samples = append(samples, make([]float64, required-len(samples))...)
	} else {
		samples = samples[:required]
	}

	f := &audioFeatures{Duration: duration}

	// Громкость по кадрам
	var frameRMS []float64
	for start := 0; start+analysisFrameSize <= len(samples); start += analysisFrameSize {
		var sum float64
		for _, v := range samples[start : start+analysisFrameSize] {
			sum += v * v
		}
		frameRMS = append(frameRMS, math.Sqrt(sum/float64(analysisFrameSize)))
	}
	for _, v := range frameRMS {
		f.RMSMean += v
	}
	if len(frameRMS) > 0 {
		f.RMSMean /= float64(len(frameRMS))
		var variance float64
		for _, v := range frameRMS {
			variance += (v - f.RMSMean) * (v - f.RMSMean)
		}
		f.RMSStd = math.Sqrt(variance / float64(len(frameRMS)))
	}

	// Пересечения нуля и пик
	var crossings int
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
		if a := math.Abs(samples[i]); a > f.Peak {
			f.Peak = a
		}
	}
	f.ZCR = float64(crossings) / float64(len(samples))

	return f, nil
}

// classifyAudio переводит признаки в уверенность дистресса [0,1] и
// грубую метку эмоции. Тишина сразу дает ноль.
func classifyAudio(f *audioFeatures) (confidence float64, emotion string) {
	if f.Peak < 0.01 {
		return 0, "N/A"
	}

	loudness := clamp01(f.RMSMean / 0.25)
	burstiness := clamp01(f.RMSStd / 0.12)
	sharpness := clamp01(f.ZCR / 0.15)

	confidence = clamp01(0.5*loudness + 0.3*burstiness + 0.2*sharpness)

	switch {
	case confidence < MediumThreshold:
		emotion = "neutral"
	case sharpness > 0.6:
		emotion = "fear"
	default:
		emotion = "anger"
	}
	return confidence, emotion
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// decodeWAV разбирает RIFF/WAVE контейнер и возвращает моно-сигнал в
// диапазоне [-1,1]. Поддерживается только несжатый PCM 16 бит -
// именно его пишет рекордер репортера.
func decodeWAV(path string) (samples []float64, sampleRate int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read wav file: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file: %s", path)
	}

	var (
		numChannels   int
		bitsPerSample int
		audioFormat   int
		raw           []byte
	)

	// Обходим чанки: нужен fmt до data
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, fmt.Errorf("malformed fmt chunk in %s", path)
			}
			audioFormat = int(binary.LittleEndian.Uint16(data[body : body+2]))
			numChannels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			raw = data[body : body+chunkSize]
		}

		// Чанки выровнены по четной границе
		if chunkSize%2 == 1 {
			chunkSize++
		}
		offset = body + chunkSize
	}

	if raw == nil {
		return nil, 0, fmt.Errorf("no data chunk in %s", path)
	}
	if audioFormat != 1 || bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("unsupported wav encoding (format=%d, bits=%d)", audioFormat, bitsPerSample)
	}
	if numChannels < 1 {
		numChannels = 1
	}

	frameCount := len(raw) / (2 * numChannels)
	samples = make([]float64, 0, frameCount)
	for i := 0; i < frameCount; i++ {
		// Сводим каналы в моно усреднением
		var acc float64
		for ch := 0; ch < numChannels; ch++ {
			off := (i*numChannels + ch) * 2
			acc += float64(int16(binary.LittleEndian.Uint16(raw[off : off+2])))
		}
		samples = append(samples, acc/float64(numChannels)/32768.0)
	}

	return samples, sampleRate, nil
}
