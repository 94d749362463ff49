package pointid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hyperjump/sanad/internal/models"
)

func chunk(source models.SourceType, file string, idx int) models.Chunk {
	return models.Chunk{Text: "t", Metadata: models.Metadata{SourceType: source, Filename: file}, ChunkIndex: idx}
}

func TestStable_deterministic(t *testing.T) {
	c := chunk(models.SourceAAOIFI, "aaoifi_standard_08_murabaha.pdf", 2)
	id1 := Stable(c)
	id2 := Stable(c)
	if id1 != id2 {
		t.Errorf("same chunk should give same ID: %q vs %q", id1, id2)
	}
	parsed, err := uuid.Parse(id1)
	if err != nil {
		t.Fatalf("not a UUID: %q", id1)
	}
	if parsed.Version() != 5 {
		t.Errorf("version = %d, want 5", parsed.Version())
	}
}

func TestStable_ignoresText(t *testing.T) {
	a := chunk(models.SourceHadith, "h.txt", 0)
	b := a
	b.Text = "edited"
	if Stable(a) != Stable(b) {
		t.Error("ID should depend on identity, not text")
	}
}

func TestStable_distinguishesIdentity(t *testing.T) {
	base := chunk(models.SourceHadith, "h.txt", 0)
	others := []models.Chunk{
		chunk(models.SourceHadith, "h.txt", 1),
		chunk(models.SourceScholar, "h.txt", 0),
		chunk(models.SourceHadith, "g.txt", 0),
	}
	for _, o := range others {
		if Stable(base) == Stable(o) {
			t.Errorf("expected different IDs for %+v and %+v", base, o)
		}
	}
}

func TestStable_versesDiffer(t *testing.T) {
	v1 := chunk(models.SourceQuran, "quran.txt", 0)
	v1.Metadata.Surah, v1.Metadata.Ayah = models.StringPtr("2"), models.StringPtr("275")
	v2 := v1
	v2.Metadata.Ayah = models.StringPtr("278")
	if Stable(v1) == Stable(v2) {
		t.Error("different ayahs of the same file must not collide")
	}
	if Key(v1) != "quran|quran.txt|2|275|0" {
		t.Errorf("Key = %q", Key(v1))
	}
}

func TestStable_pathDistinguishesFiles(t *testing.T) {
	a := chunk(models.SourceHadith, "a.txt", 0)
	a.Metadata.Path = "hadith/a.txt"
	b := a
	b.Metadata.Path = "archive/hadith/a.txt"
	if Stable(a) == Stable(b) {
		t.Error("same filename in different folders must not collide")
	}
	if Key(a) != "hadith|hadith/a.txt|||0" {
		t.Errorf("Key = %q", Key(a))
	}
	if Stable(a) != Stable(a) {
		t.Error("stable IDs must be deterministic")
	}
}

func TestRandom_unique(t *testing.T) {
	c := chunk(models.SourceHadith, "h.txt", 0)
	if Random(c) == Random(c) {
		t.Error("random IDs should differ between calls")
	}
}

func TestForStrategy(t *testing.T) {
	for _, name := range []string{"stable", "random", ""} {
		if f, err := ForStrategy(name); err != nil || f == nil {
			t.Errorf("ForStrategy(%q) = %v, %v", name, f, err)
		}
	}
	if _, err := ForStrategy("sequential"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
