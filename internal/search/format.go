package search

import "strings"

func isOperandRune(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r == '_'
}

// RenderNegations rewrites "!X" operands with a combining overline per
// character, the conventional negation notation on wiring diagrams. A bang
// not followed by an operand is left alone.
func RenderNegations(expr string) string {
	var b strings.Builder
	runes := []rune(expr)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '!' {
			b.WriteRune(runes[i])
			continue
		}
		j := i + 1
		for j < len(runes) && isOperandRune(runes[j]) {
			j++
		}
		if j == i+1 {
			b.WriteRune('!')
			continue
		}
		for _, r := range runes[i+1 : j] {
			b.WriteRune(r)
			b.WriteRune('\u0305') // combining overline
		}
		i = j - 1
	}
	return b.String()
}
