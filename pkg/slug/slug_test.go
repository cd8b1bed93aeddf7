package slug

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestMake(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Trekking   in\tNepal  ", "trekking-in-nepal"},
		{"Café & Croissants: Paris!", "caf-croissants-paris"},
		{"10 Days in Kyoto (2024)", "10-days-in-kyoto-2024"},
		{"Bali -- the  Guide", "bali-the-guide"},
		{"Lisbon\u00a0Trams", "lisbon-trams"},
		{"Sea\u2003and\u3000Sky", "sea-and-sky"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.title))
		})
	}
}

func TestMake_Truncates(t *testing.T) {
	title := strings.Repeat("wander ", 20)
	got := Make(title)
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.Regexp(t, slugPattern, got)
	assert.True(t, strings.HasPrefix(got, "wander-wander"))
}

func TestMake_Properties(t *testing.T) {
	titles := []string{
		"A Weekend in Lisbon",
		"Street Food of Bangkok: Top 15 Dishes You Must Try Before You Leave",
		"¿Dónde está la playa?",
		"Northern Lights — Tromsø, Norway",
		"   leading and trailing   ",
		"UPPER lower 123 MiXeD",
		strings.Repeat("x", 80),
		"a b c d e f g h i j k l m n o p q r s t u v w x y z 0 1 2 3",
	}
	for _, title := range titles {
		got := Make(title)
		assert.LessOrEqual(t, len(got), MaxLength, title)
		assert.Equal(t, strings.ToLower(got), got, title)
		assert.Regexp(t, slugPattern, got, title)
		assert.Equal(t, got, Make(title), "derivation must be deterministic")
	}
}
