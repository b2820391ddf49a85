package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"
)

func TestFixMojibake(t *testing.T) {
	original := "人工智能新闻"
	broken, err := charmap.ISO8859_1.NewDecoder().String(original)
	if err != nil {
		t.Fatalf("build broken sample: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "repairs latin1 reinterpretation", in: broken, want: original},
		{name: "clean chinese untouched", in: original, want: original},
		{name: "clean english untouched", in: "OpenAI ships GPT", want: "OpenAI ships GPT"},
		{name: "legit accent kept", in: "Café résumé", want: "Café résumé"},
		{name: "trims", in: "  hello  ", want: "hello"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FixMojibake(tt.in))
		})
	}
}

func TestHasMojibakeNoise(t *testing.T) {
	assert.True(t, HasMojibakeNoise("æ·±åº¦"))
	assert.True(t, HasMojibakeNoise("bad � char"))
	assert.True(t, HasMojibakeNoise("itâ€™s"))
	assert.False(t, HasMojibakeNoise("科技新闻"))
	assert.False(t, HasMojibakeNoise(""))
}

func TestIsMostlyEnglish(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"OpenAI releases new model", true},
		{"iOS 26", true},
		{"OpenAI 发布新模型", false},
		{"2026-01-01 12:00", false},
		{"", false},
		{"Пример заголовка", false},
		{"AI：١٢٣٤٥٦٧٨٩", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMostlyEnglish(tt.in), tt.in)
	}
}

func TestHasCJK(t *testing.T) {
	assert.True(t, HasCJK("GPT-5 发布"))
	assert.False(t, HasCJK("GPT-5 release"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", " b ", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
