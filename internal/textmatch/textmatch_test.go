package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "nvidia ships blackwell", Normalize("  Nvidia\tShips \n\n BLACKWELL "))
	assert.Equal(t, "", Normalize(" \t "))
}

func TestContainsKeyword(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    bool
	}{
		{"single word match", "nvidia announces blackwell delays", "Blackwell", true},
		{"single word inside token", "harmful chips", "arm", false},
		{"single word at start", "arm unveils new core", "ARM", true},
		{"single word at end", "softbank backs arm", "arm", true},
		{"single word with punctuation", "apple's ai plans, openai's reply", "openai", true},
		{"possessive prefix", "openai's chatgpt", "openai", true},
		{"phrase substring", "apple integrates openai's chatgpt into ios 18", "ios 18", true},
		{"phrase inside larger token", "microsoftai lab", "microsoft ai", false},
		{"phrase substring across token", "the big tech giants", "g tech", true},
		{"empty keyword", "anything", "  ", false},
		{"keyword with symbol", "c++ compilers get faster", "c++", false},
		{"keyword with symbol followed by word char", "c++x is odd", "c++", true},
		{"repeated occurrence", "metadata meta platforms", "meta", true},
		{"unicode letter boundary", "nvidiaé news", "nvidia", false},
		{"digits are word chars", "h100s shipping", "h100", false},
		{"digits exact", "h100 shipping", "h100", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsKeyword(tt.text, tt.keyword))
		})
	}
}

func TestContainsPadded(t *testing.T) {
	assert.True(t, ContainsPadded("blackwell delays", "Blackwell"))
	assert.True(t, ContainsPadded("new blackwell", "blackwell"))
	assert.False(t, ContainsPadded("blackwell's delays", "blackwell"))
	assert.False(t, ContainsPadded("text", ""))

	assert.False(t, ContainsKeyword("microsoft ships copilot+ laptops", "Copilot+"))
	assert.True(t, ContainsPadded("microsoft ships copilot+ laptops", "Copilot+"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("microsoft expands azure", []string{"aws", "Azure"}))
	assert.False(t, ContainsAny("microsoft expands azure", nil))
}
