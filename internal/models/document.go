// Package models defines core data structures for corpus documents, chunks, and retrieval results.
package models

import "strings"

// SourceType identifies where a passage comes from. It drives citation labels.
type SourceType string

const (
	SourceQuran      SourceType = "quran"
	SourceHadith     SourceType = "hadith"
	SourceScholar    SourceType = "scholar"
	SourceAAOIFI     SourceType = "aaoifi"
	SourceScholarWeb SourceType = "scholar_web"
	SourceUnknown    SourceType = "unknown"
)

// CorpusSourceTypes are the subfolder names expected under the corpus root.
var CorpusSourceTypes = []SourceType{SourceQuran, SourceHadith, SourceScholar, SourceAAOIFI}

// Metadata is the citation information carried by documents and their chunks.
// Surah and Ayah are only set for Quran verses. Path is the slash-separated
// location of the source file below the corpus root; it identifies the file
// but is not part of the stored payload.
type Metadata struct {
	SourceType SourceType `json:"source_type"`
	Filename   string     `json:"filename"`
	Path       string     `json:"path,omitempty"`
	Surah      *string    `json:"surah,omitempty"`
	Ayah       *string    `json:"ayah,omitempty"`
}

// HasVerse reports whether both Quran verse fields are present and non-empty.
func (m Metadata) HasVerse() bool {
	return m.Surah != nil && *m.Surah != "" && m.Ayah != nil && *m.Ayah != ""
}

// Document is a normalized source text with its citation metadata.
type Document struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Chunk is a token window of a Document. ChunkIndex is its 0-based position
// in the parent document's chunk sequence.
type Chunk struct {
	Text       string   `json:"text"`
	Metadata   Metadata `json:"metadata"`
	ChunkIndex int      `json:"chunk_index"`
}

// Payload is what the vector store keeps next to each vector.
type Payload struct {
	Text       string     `json:"text"`
	SourceType SourceType `json:"source_type"`
	Filename   string     `json:"filename"`
	ChunkIndex int        `json:"chunk_index"`
	Surah      *string    `json:"surah,omitempty"`
	Ayah       *string    `json:"ayah,omitempty"`
}

// Payload flattens the chunk into its stored form.
func (c Chunk) Payload() Payload {
	return Payload{
		Text:       c.Text,
		SourceType: c.Metadata.SourceType,
		Filename:   c.Metadata.Filename,
		ChunkIndex: c.ChunkIndex,
		Surah:      c.Metadata.Surah,
		Ayah:       c.Metadata.Ayah,
	}
}

// Point is a single vector with its payload, keyed by a UUID string.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredPoint is a nearest-neighbour hit returned by a vector store.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload Payload
}

// RetrievedChunk is a passage handed to the answer generator.
type RetrievedChunk struct {
	Text       string     `json:"text"`
	Score      float64    `json:"score"`
	SourceType SourceType `json:"source_type"`
	Filename   string     `json:"filename"`
	ChunkIndex int        `json:"chunk_index"`
	Surah      *string    `json:"surah,omitempty"`
	Ayah       *string    `json:"ayah,omitempty"`
}

// Label returns the citation label used in the context block, e.g.
// "Quran — Surah 2, Ayah 275" or "AAOIFI — aaoifi_standard_08_murabaha.pdf".
func (r RetrievedChunk) Label() string {
	meta := Metadata{SourceType: r.SourceType, Filename: r.Filename, Surah: r.Surah, Ayah: r.Ayah}
	if r.SourceType == SourceQuran && meta.HasVerse() {
		return "Quran — Surah " + *r.Surah + ", Ayah " + *r.Ayah
	}
	return strings.ToUpper(string(r.SourceType)) + " — " + r.Filename
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
