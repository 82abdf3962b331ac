package roll

import "regexp"

var inlineRollPattern = regexp.MustCompile(`\[\[(.*?)\]\]`)

// FindInlineRolls возвращает содержимое всех [[...]] слева направо.
// Повторяющиеся токены возвращаются столько раз, сколько встречаются.
func FindInlineRolls(content string) []string {
	matches := inlineRollPattern.FindAllStringSubmatch(content, -1)
	tokens := make([]string, 0, len(matches))
	for _, match := range matches {
		tokens = append(tokens, match[1])
	}
	return tokens
}
