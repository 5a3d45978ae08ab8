package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanWordsDropsBlankWords(t *testing.T) {
	in := []WordRecord{
		{Word: "  chat ", Phonetic: " ʃa ", Meaning: " cat "},
		{Word: "   ", Meaning: "orphan"},
		{Word: "chien"},
	}

	out := CleanWords(in)

	assert.Equal(t, []WordRecord{
		{Word: "chat", Phonetic: "ʃa", Meaning: "cat"},
		{Word: "chien"},
	}, out)
	assert.Equal(t, "  chat ", in[0].Word, "input must not be mutated")
}

func TestIntentRoundTripNames(t *testing.T) {
	for name, typ := range intentNames {
		assert.Equal(t, name, typ.String())
		assert.Equal(t, typ, IntentFromString(name))
	}
	assert.Equal(t, IntentUnknown, IntentFromString("nope"))
}

func TestLookupLanguage(t *testing.T) {
	l, ok := LookupLanguage(DefaultLanguages, "zh")
	assert.True(t, ok)
	assert.Equal(t, "zh-CN", l.Locale)

	_, ok = LookupLanguage(DefaultLanguages, "xx")
	assert.False(t, ok)
}
