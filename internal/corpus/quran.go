package corpus

import (
	"strings"

	"github.com/hyperjump/sanad/internal/models"
)

// IsQuranPipeFormat reports whether the first non-blank line looks like
// "surah|ayah|text" with numeric surah and ayah.
func IsQuranPipeFormat(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		return len(parts) >= 3 && isDigits(parts[0]) && isDigits(parts[1])
	}
	return false
}

// ParseQuranPipe turns each "surah|ayah|text" line into one document. The text
// field keeps any further pipes. Lines with fewer than three fields or empty
// text are skipped.
func ParseQuranPipe(text, filename string) []models.Document {
	var docs []models.Document
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) < 3 {
			continue
		}
		surah, ayah, verse := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
		if verse == "" {
			continue
		}
		docs = append(docs, models.Document{
			Text: verse,
			Metadata: models.Metadata{
				SourceType: models.SourceQuran,
				Filename:   filename,
				Surah:      models.StringPtr(surah),
				Ayah:       models.StringPtr(ayah),
			},
		})
	}
	return docs
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
