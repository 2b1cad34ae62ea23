package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextOperatorUnification(t *testing.T) {
	// Fullwidth caret and the OR glyph variants must collapse to the same
	// canonical expression as plain ASCII input.
	assert.Equal(t, Text("04E^351v038"), Text("04E＾351∨038"))
	assert.Equal(t, "04E^351v038", Text("04E＾351∨038"))
	assert.Equal(t, "A v B", Text("A Ｖ B"))
	assert.Equal(t, "A v B", Text("A V B"))
	assert.Equal(t, "X01+X02", Text("X01＋X02"))
}

func TestTextDashVariants(t *testing.T) {
	for _, in := range []string{"A−B", "A–B", "A—B", "A―B", "AーB", "A－B", "A-B"} {
		assert.Equal(t, "A-B", Text(in), "input %q", in)
	}
}

func TestTextFullwidthFold(t *testing.T) {
	assert.Equal(t, "Q124", Text("Ｑ１２４"))
	assert.Equal(t, "(065^354)v038", Text("（０６５＾３５４）∨０３８"))
}

func TestTextWhitespace(t *testing.T) {
	assert.Equal(t, "A ^ B", Text("  A   ^ \t B  "))
	assert.Equal(t, "A ^ B", Text("A　^　B")) // ideographic space
	assert.Equal(t, "", Text("   "))
	assert.Equal(t, "", Text(""))
}

func TestIdentifierUppercases(t *testing.T) {
	assert.Equal(t, "Q3B0", Identifier("q3b0"))
	assert.Equal(t, "BOX5", Identifier(" ｂｏｘ５ "))
}

func TestIdempotence(t *testing.T) {
	corpus := []string{
		"",
		"04E＾351∨038",
		"04E^351^383^3BD^((065^354)v038)",
		"Ｑ１２４  ー  Ｘ０１",
		"a V b ∨ c Ｖ d",
		"  mixed　　whitespace\tand—dashes−here  ",
		"!X01 ^ (QL123 v Q042)",
		"plain ascii stays put",
	}
	for _, s := range corpus {
		once := Text(s)
		assert.Equal(t, once, Text(once), "Text not idempotent for %q", s)

		id := Identifier(s)
		assert.Equal(t, id, Identifier(id), "Identifier not idempotent for %q", s)

		expr := Expression(s)
		assert.Equal(t, expr, Expression(expr), "Expression not idempotent for %q", s)
	}
}

func TestViaBoxes(t *testing.T) {
	assert.Equal(t, []string{"BOX5", "BOX6"}, ViaBoxes("BOX5,BOX6"))
	assert.Equal(t, []string{"BOX5", "BOX6"}, ViaBoxes(" box5 , ｂｏｘ6 ,, "))
	assert.Nil(t, ViaBoxes(""))
	assert.Nil(t, ViaBoxes("  "))
}
