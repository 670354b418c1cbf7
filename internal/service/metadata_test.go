package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerateCountsWordsAndCharacters(t *testing.T) {
	g := NewMetadataGenerator()

	meta := g.Generate("hello ****")
	assert.Equal(t, 2, meta.WordCount)
	assert.Equal(t, 10, meta.CharacterCount)
}

func TestGenerateEmptyContent(t *testing.T) {
	g := NewMetadataGenerator()

	meta := g.Generate("")
	assert.Equal(t, 0, meta.WordCount)
	assert.Equal(t, 0, meta.CharacterCount)
}

func TestGenerateCollapsesWhitespace(t *testing.T) {
	g := NewMetadataGenerator()

	meta := g.Generate("  one   two\t\nthree  ")
	assert.Equal(t, 3, meta.WordCount)
	assert.Equal(t, 20, meta.CharacterCount)
}

func TestGenerateCountsCodePoints(t *testing.T) {
	g := NewMetadataGenerator()

	// 5 runes, 6 bytes.
	meta := g.Generate("héllo")
	assert.Equal(t, 5, meta.CharacterCount)
	assert.Equal(t, 1, meta.WordCount)
}

func TestGenerateProcessedAtFormat(t *testing.T) {
	instant := time.Date(2023, 6, 15, 14, 30, 45, 123456789, time.FixedZone("CEST", 2*3600))
	g := NewMetadataGeneratorWithClock(fixedClock(instant))

	meta := g.Generate("x")
	// Second precision, UTC, literal Z, no fractional seconds.
	assert.Equal(t, "2023-06-15T12:30:45Z", meta.ProcessedAt)
}
