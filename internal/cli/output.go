// Package cli provides the interactive chat loop and output helpers for the sanad CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/sanad/internal/models"
)

// OutputFormat selects how one-shot results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an answer to w in the given format.
func WriteAnswer(w io.Writer, answer string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, models.AskResponse{Answer: answer})
	}
	_, err := fmt.Fprintln(w, answer)
	return err
}

// WriteIngestStats writes an ingestion summary to w in the given format.
func WriteIngestStats(w io.Writer, stats models.IngestStats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	if stats.Documents == 0 {
		_, err := fmt.Fprintln(w, "No documents ingested.")
		return err
	}
	_, err := fmt.Fprintf(w, "Ingested %d documents as %d chunks.\n", stats.Documents, stats.Chunks)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
