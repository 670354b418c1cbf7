package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"chat-relay-demo/backend/internal/models"
)

// processedAtLayout is second precision; the trailing Z is appended literally
// since the wall clock is always taken in UTC.
const processedAtLayout = "2006-01-02T15:04:05"

// MetadataGenerator derives the server-side metadata for a filtered message.
type MetadataGenerator struct {
	now func() time.Time
}

// NewMetadataGenerator creates a generator using the system clock.
func NewMetadataGenerator() *MetadataGenerator {
	return &MetadataGenerator{now: time.Now}
}

// NewMetadataGeneratorWithClock creates a generator with an injected clock.
func NewMetadataGeneratorWithClock(now func() time.Time) *MetadataGenerator {
	return &MetadataGenerator{now: now}
}

// Generate computes word count (whitespace-delimited tokens), character count
// (code points, internal whitespace included) and the processing timestamp
// for the given filtered content.
func (g *MetadataGenerator) Generate(content string) models.MessageMetadata {
	return models.MessageMetadata{
		WordCount:      len(strings.Fields(content)),
		CharacterCount: utf8.RuneCountInString(content),
		ProcessedAt:    g.now().UTC().Format(processedAtLayout) + "Z",
	}
}
