// Package pointid derives vector point IDs for chunks.
package pointid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/sanad/internal/models"
)

// Func returns the point ID for a chunk.
type Func func(models.Chunk) string

// namespace scopes the name-based UUIDs to this application.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/hyperjump/sanad/points"))

// Key returns the identity of a chunk: source type, file, verse and chunk index.
// The file is the corpus-relative path when known, else the filename.
func Key(c models.Chunk) string {
	file := c.Metadata.Path
	if file == "" {
		file = c.Metadata.Filename
	}
	var surah, ayah string
	if c.Metadata.Surah != nil {
		surah = *c.Metadata.Surah
	}
	if c.Metadata.Ayah != nil {
		ayah = *c.Metadata.Ayah
	}
	return strings.Join([]string{
		string(c.Metadata.SourceType),
		file,
		surah,
		ayah,
		strconv.Itoa(c.ChunkIndex),
	}, "|")
}

// Stable returns a UUIDv5 of the chunk's Key. The same chunk always gets the
// same ID, so re-uploading an unchanged corpus overwrites its points.
func Stable(c models.Chunk) string {
	return uuid.NewSHA1(namespace, []byte(Key(c))).String()
}

// Random returns a fresh UUIDv4 on every call, so each upload adds new points.
func Random(models.Chunk) string {
	return uuid.NewString()
}

// ForStrategy returns the ID function for "stable" or "random".
func ForStrategy(name string) (Func, error) {
	switch name {
	case "stable", "":
		return Stable, nil
	case "random":
		return Random, nil
	default:
		return nil, fmt.Errorf("unknown point id strategy: %s (supported: stable, random)", name)
	}
}
