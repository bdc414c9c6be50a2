package segment

import (
	"strings"
	"unicode"
)

// SplitSentences breaks document text into an ordered list of sentences.
// Blank lines always end the current sentence; within a line, sentences end
// at '.', '!' or '?' with trailing punctuation runs and closing quotes or
// brackets kept attached. Returns nil for text without any sentence content.
func SplitSentences(text string) []string {
	lines := strings.Split(text, "\n")
	var sentences []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		for _, sentence := range splitLine(trimmed) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)

			if endsSentence(sentence) {
				flush()
			}
		}
	}
	flush()

	var result []string
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) != "" {
			result = append(result, sentence)
		}
	}
	return result
}

func endsSentence(s string) bool {
	t := strings.TrimRight(strings.TrimSpace(s), "\"')]}")
	return strings.HasSuffix(t, ".") ||
		strings.HasSuffix(t, "!") ||
		strings.HasSuffix(t, "?")
}

func splitLine(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])

		if line[i] != '.' && line[i] != '!' && line[i] != '?' {
			continue
		}

		// Numbered listings like "1. agendapunt" are not sentence ends.
		if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
			continue
		}

		j := i + 1
		for j < len(line) && (line[j] == '.' || line[j] == '!' || line[j] == '?') {
			current.WriteByte(line[j])
			j++
		}
		for j < len(line) && (line[j] == '"' || line[j] == '\'' || line[j] == ')' ||
			line[j] == ']' || line[j] == '}') {
			current.WriteByte(line[j])
			j++
		}

		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
		i = j - 1
	}

	remaining := strings.TrimSpace(current.String())
	if remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}
