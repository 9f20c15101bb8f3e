package risk

import (
	"regexp"
	"strings"
)

// Шаблон дистресса в тексте сообщения и его вес
type textPattern struct {
	re         *regexp.Regexp
	confidence float64
}

// Скомпилированная таблица шаблонов, от сильных маркеров к слабым.
// Берется первый совпавший, таблица упорядочена по убыванию веса.
var textPatterns = []textPattern{
	{regexp.MustCompile(`(?i)(help\s+me|save\s+me|\bsos\b|emergency)`), 0.95},
	{regexp.MustCompile(`(?i)(attack(ed|ing)?|\bgun\b|knife|kidnap|assault|\bfire\b|bleeding)`), 0.90},
	{regexp.MustCompile(`(?i)(follow(ed|ing)|stalk(ed|ing)?|chas(ed|ing)|threat(en(ed|ing)?)?)`), 0.75},
	{regexp.MustCompile(`(?i)(scared|afraid|terrified|in\s+danger|danger(ous)?)`), 0.70},
	{regexp.MustCompile(`(?i)(unsafe|uncomfortable|lost|stranded|alone\s+at\s+night)`), 0.55},
}

// scoreText возвращает уверенность дистресса по тексту и совпавший фрагмент
func scoreText(text string) (confidence float64, extract string) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, ""
	}
	for _, p := range textPatterns {
		if loc := p.re.FindStringIndex(t); loc != nil {
			return p.confidence, t[loc[0]:loc[1]]
		}
	}
	return 0, ""
}
