package vector

import (
	"context"
	"testing"

	"github.com/hyperjump/sanad/internal/models"
)

func TestChromemStore_UpsertSearch(t *testing.T) {
	s, err := NewChromemStore("", "islamic_finance", false)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	if _, err := s.Search(ctx, []float32{1, 0, 0}, 1); err == nil {
		t.Error("expected error before collection exists")
	}
	if err := s.EnsureCollection(ctx, 3); err != nil {
		t.Fatal(err)
	}
	points := []models.Point{
		{ID: "v1", Vector: []float32{1, 0, 0}, Payload: models.Payload{
			Text: "Those who devour usury", SourceType: models.SourceQuran, Filename: "q.txt",
			Surah: models.StringPtr("2"), Ayah: models.StringPtr("275"),
		}},
		{ID: "v2", Vector: []float32{0, 1, 0}, Payload: models.Payload{
			Text: "Murabaha is a sale contract", SourceType: models.SourceAAOIFI, Filename: "m.pdf", ChunkIndex: 2,
		}},
	}
	if err := s.Upsert(ctx, points); err != nil {
		t.Fatal(err)
	}

	res, err := s.Search(ctx, []float32{0.1, 0.9, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("k should be capped at collection size, got %d results", len(res))
	}
	top := res[0]
	if top.ID != "v2" || top.Payload.Filename != "m.pdf" || top.Payload.ChunkIndex != 2 || top.Payload.Surah != nil {
		t.Errorf("top = %+v", top)
	}
	if top.Score <= res[1].Score {
		t.Errorf("results not ordered: %v then %v", top.Score, res[1].Score)
	}
	quran := res[1].Payload
	if quran.Surah == nil || *quran.Surah != "2" || quran.Ayah == nil || *quran.Ayah != "275" {
		t.Errorf("verse metadata lost: %+v", quran)
	}
}

func TestChromemStore_UpsertSameIDOverwrites(t *testing.T) {
	s, _ := NewChromemStore("", "c", false)
	ctx := context.Background()
	_ = s.EnsureCollection(ctx, 2)
	p := models.Point{ID: "same", Vector: []float32{1, 0}, Payload: models.Payload{Text: "a", SourceType: models.SourceHadith, Filename: "h.txt"}}
	for i := 0; i < 2; i++ {
		if err := s.Upsert(ctx, []models.Point{p}); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestChromemStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := NewChromemStore(dir, "c", false)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.EnsureCollection(ctx, 2)
	if err := s.Upsert(ctx, []models.Point{{ID: "p", Vector: []float32{1, 0}, Payload: models.Payload{Text: "x", SourceType: models.SourceScholar, Filename: "s.txt"}}}); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewChromemStore(dir, "c", false)
	if err != nil {
		t.Fatal(err)
	}
	if n, err := reopened.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count after reopen = %d, %v; want 1", n, err)
	}
	res, err := reopened.Search(ctx, []float32{1, 0}, 3)
	if err != nil || len(res) != 1 || res[0].Payload.SourceType != models.SourceScholar {
		t.Errorf("search after reopen = %+v, %v", res, err)
	}
	if err := reopened.EnsureCollection(ctx, 2); err != nil {
		t.Errorf("EnsureCollection on reopened collection: %v", err)
	}
}

func TestChromemStore_DimensionChecks(t *testing.T) {
	s, _ := NewChromemStore("", "c", false)
	ctx := context.Background()
	_ = s.EnsureCollection(ctx, 2)
	if err := s.EnsureCollection(ctx, 3); err == nil {
		t.Error("expected error for conflicting dimension")
	}
	if err := s.Upsert(ctx, []models.Point{{ID: "x", Vector: []float32{1, 2, 3}, Payload: models.Payload{Text: "x"}}}); err == nil {
		t.Error("expected dimension mismatch")
	}
}
