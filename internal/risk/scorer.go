package risk

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Пороговые значения итоговой уверенности для классов серьезности.
// High и Medium дальше триггерят уведомление диспетчерским службам.
const (
	HighThreshold   = 0.85
	MediumThreshold = 0.50
)

const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
)

// Assessment - результат оценки риска по аудио и тексту
type Assessment struct {
	Severity   string
	Confidence float64
	Details    map[string]any
}

// HeuristicScorer оценивает уровень угрозы по записи голоса и тексту
// сообщения. Аудио-канал - эвристика по энергии и частоте пересечений
// нуля, текстовый - таблица шаблонов. Итоговая уверенность - максимум
// из двух каналов, как в исходной модели.
type HeuristicScorer struct {
	logger *logrus.Logger
}

func NewHeuristicScorer(logger *logrus.Logger) *HeuristicScorer {
	return &HeuristicScorer{logger: logger}
}

// Score рассчитывает серьезность тревоги. Отказ аудио-канала не фатален:
// оценка продолжается по тексту, а причина попадает в details.
func (s *HeuristicScorer) Score(ctx context.Context, audioPath string, textInput string) (*Assessment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"component": "risk",
		"method":    "Score",
	})

	var (
		audioConfidence float64
		textConfidence  float64
		audioEmotion    = "N/A"
	)
	details := map[string]any{}

	if audioPath != "" {
		features, err := extractFeatures(audioPath)
		if err != nil {
			log.WithError(err).Warn("Audio feature extraction failed, falling back to text")
			details["audio_error"] = "Audio processing failed: " + err.Error()
		} else {
			audioConfidence, audioEmotion = classifyAudio(features)
		}
	}

	if textInput != "" {
		textConfidence, _ = scoreText(textInput)
	}

	// Итог - максимум уверенности двух каналов
	finalConfidence := audioConfidence
	if textConfidence > finalConfidence {
		finalConfidence = textConfidence
	}

	severity := SeverityLow
	switch {
	case finalConfidence >= HighThreshold:
		severity = SeverityHigh
	case finalConfidence >= MediumThreshold:
		severity = SeverityMedium
	}

	details["audio_confidence"] = audioConfidence
	details["audio_emotion"] = audioEmotion
	details["text_confidence_distress"] = textConfidence

	log.WithFields(logrus.Fields{
		"severity":   severity,
		"confidence": finalConfidence,
	}).Info("Risk assessment completed")

	return &Assessment{
		Severity:   severity,
		Confidence: finalConfidence,
		Details:    details,
	}, nil
}
