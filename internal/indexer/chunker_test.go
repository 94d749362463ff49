package indexer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/sanad/internal/models"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " ")
}

func testDoc(text string) models.Document {
	return models.Document{Text: text, Metadata: models.Metadata{SourceType: models.SourceAAOIFI, Filename: "aaoifi.pdf"}}
}

func TestChunker_ShortDocumentSingleChunk(t *testing.T) {
	c := NewChunker(NewWordTokenizer(), 800, 100)
	text := words(750)
	chunks := c.Chunk(testDoc(text))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ChunkIndex != 0 || chunks[0].Text != text {
		t.Errorf("chunk = index %d, %d bytes", chunks[0].ChunkIndex, len(chunks[0].Text))
	}
	if chunks[0].Metadata.Filename != "aaoifi.pdf" || chunks[0].Metadata.SourceType != models.SourceAAOIFI {
		t.Errorf("metadata not copied: %+v", chunks[0].Metadata)
	}
}

func TestChunker_ExactSizeSingleChunk(t *testing.T) {
	c := NewChunker(NewWordTokenizer(), 800, 100)
	if n := len(c.Chunk(testDoc(words(800)))); n != 1 {
		t.Errorf("expected 1 chunk, got %d", n)
	}
}

func TestChunker_StopsAtWindowReachingEnd(t *testing.T) {
	c := NewChunker(NewWordTokenizer(), 800, 100)
	chunks := c.Chunk(testDoc(words(1500)))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	last := strings.Fields(chunks[1].Text)
	if len(last) != 800 || last[0] != "w700" || last[799] != "w1499" {
		t.Errorf("last window = %s..%s (%d tokens)", last[0], last[len(last)-1], len(last))
	}
}

func TestChunker_RoundTrip(t *testing.T) {
	tok := NewWordTokenizer()
	c := NewChunker(tok, 800, 100)
	text := words(2000)
	chunks := c.Chunk(testDoc(text))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	var rebuilt []int
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d ChunkIndex=%d", i, ch.ChunkIndex)
		}
		toks := tok.Encode(ch.Text)
		if i > 0 {
			toks = toks[100:]
		}
		rebuilt = append(rebuilt, toks...)
	}
	if !reflect.DeepEqual(rebuilt, tok.Encode(text)) {
		t.Error("removing overlaps does not reproduce the original tokens")
	}
}

func TestChunker_ConsecutiveChunksShareOverlap(t *testing.T) {
	tok := NewWordTokenizer()
	c := NewChunker(tok, 800, 100)
	chunks := c.Chunk(testDoc(words(1600)))
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i := 0; i+1 < len(chunks); i++ {
		a := tok.Encode(chunks[i].Text)
		b := tok.Encode(chunks[i+1].Text)
		if len(a) != 800 {
			t.Errorf("chunk %d has %d tokens, want 800", i, len(a))
		}
		if !reflect.DeepEqual(a[len(a)-100:], b[:100]) {
			t.Errorf("chunks %d and %d do not share 100 tokens", i, i+1)
		}
	}
}

func TestChunker_ChunkEmpty(t *testing.T) {
	c := NewChunker(NewWordTokenizer(), 5, 1)
	if chunks := c.Chunk(testDoc("   \n\t  ")); chunks != nil {
		t.Errorf("empty text should return nil, got %v", chunks)
	}
}

func TestChunker_Step(t *testing.T) {
	if s := NewChunker(NewWordTokenizer(), 800, 100).Step(); s != 700 {
		t.Errorf("Step = %d", s)
	}
	if s := NewChunker(NewWordTokenizer(), 10, 10).Step(); s != 1 {
		t.Errorf("Step should clamp to 1, got %d", s)
	}
}

func TestChunker_ChunkAll(t *testing.T) {
	c := NewChunker(NewWordTokenizer(), 3, 1)
	docs := []models.Document{testDoc("a b c d e"), testDoc(""), testDoc("x y")}
	chunks := c.ChunkAll(docs)
	// "a b c d e" -> [a b c] [c d e]; "x y" -> [x y]
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[2].Text != "x y" || chunks[2].ChunkIndex != 0 {
		t.Errorf("last chunk = %+v", chunks[2])
	}
}

func TestWordTokenizer(t *testing.T) {
	tok := NewWordTokenizer()
	ids := tok.Encode("riba is riba")
	if len(ids) != 3 || ids[0] != ids[2] {
		t.Errorf("ids = %v", ids)
	}
	if got := tok.Decode(ids); got != "riba is riba" {
		t.Errorf("Decode = %q", got)
	}
}

func TestTiktokenTokenizer(t *testing.T) {
	tok, err := NewTiktokenTokenizer("", "text-embedding-3-small")
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	text := "Murabaha is a cost-plus sale <|endoftext|>"
	if got := tok.Decode(tok.Encode(text)); got != text {
		t.Errorf("round trip = %q", got)
	}
}

func BenchmarkChunker_Chunk(b *testing.B) {
	doc := testDoc(words(5000))
	c := NewChunker(NewWordTokenizer(), 800, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Chunk(doc)
	}
}
