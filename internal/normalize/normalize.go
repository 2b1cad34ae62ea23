// Package normalize canonicalizes text tokens before they enter the signal
// database. Every identifier and logic-expression token written through the
// storage port must pass through this package first; the search and display
// layers rely on the canonical forms being stable.
//
// All functions are total (they never fail) and idempotent:
// Text(Text(s)) == Text(s) for every input. Idempotence matters because
// re-importing already-normalized data must not alter it.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// operatorReplacer unifies the accepted glyph variants of the logic operators.
// OR variants fold to lowercase 'v', the fullwidth caret and plus fold to
// their ASCII forms, and every dash lookalike (minus sign, en/em dash,
// horizontal bar, katakana prolonged sound mark, fullwidth hyphen) folds to a
// single ASCII '-'. After this pass the only operator glyphs that survive are
// ^ v + - and parentheses.
var operatorReplacer = strings.NewReplacer(
	"∨", "v",
	"Ｖ", "v",
	"V", "v",
	"＾", "^",
	"＋", "+",
	"−", "-",
	"–", "-",
	"—", "-",
	"―", "-",
	"ー", "-",
	"－", "-",
)

// Text canonicalizes a free-text token: NFKC compatibility fold (fullwidth
// digits/letters/punctuation collapse to their standard forms), operator
// glyph unification, whitespace-run compression, and trimming.
func Text(s string) string {
	if s == "" {
		return ""
	}
	t := norm.NFKC.String(s)
	t = operatorReplacer.Replace(t)
	return strings.Join(strings.Fields(t), " ")
}

// Identifier canonicalizes an identifier token (signal IDs, box numbers,
// program addresses): Text plus uppercasing.
func Identifier(s string) string {
	return strings.ToUpper(Text(s))
}

// Expression canonicalizes a logic expression. It is the same transform as
// Text; the separate name keeps call sites honest about what they are
// normalizing.
func Expression(s string) string {
	return Text(s)
}

// ViaBoxes splits a comma-separated via-box field into canonical identifiers,
// dropping empty elements.
func ViaBoxes(s string) []string {
	if Text(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if id := Identifier(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}
