package roll

import (
	"fmt"
	"rollhook-bot/internal/core/model"
	"strings"
)

// CritGlyph провал проверяется первым.
func CritGlyph(crit model.CritTier) string {
	if crit == model.CritFail {
		return "💀"
	}
	if crit == model.CritSuccess {
		return "💥"
	}
	return ""
}

// InlineReplacement то, что встает на место [[токена]]: `( 15💥 атака )`.
func InlineReplacement(outcome model.RollOutcome) string {
	comment := ""
	if outcome.Comment != "" {
		comment = " " + outcome.Comment
	}
	return fmt.Sprintf("`( %d%s%s )`", outcome.Total, CritGlyph(outcome.Crit), comment)
}

// DisplayLine строка для канала дампа.
func DisplayLine(outcome model.RollOutcome) string {
	if outcome.Comment != "" {
		return fmt.Sprintf("%s: %s", outcome.Comment, outcome.Rendered)
	}
	return outcome.Rendered
}

// Substitute заменяет только первое оставшееся вхождение [[token]],
// так одинаковые токены получают каждый свой результат по порядку.
func Substitute(content, token, replacement string) string {
	return strings.Replace(content, "[["+token+"]]", replacement, 1)
}

// DiceRoll текст броска без комментария, для истории.
// Комментарий всегда стоит в конце токена, поэтому отрезается только хвост.
func DiceRoll(outcome model.RollOutcome) string {
	roll := strings.TrimSpace(outcome.Token)
	if outcome.Comment != "" {
		roll = strings.TrimSuffix(roll, outcome.Comment)
	}
	roll = strings.TrimSpace(roll)
	roll = strings.TrimSuffix(roll, "#")
	return strings.TrimSpace(roll)
}
