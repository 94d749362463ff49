package indexer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used by the OpenAI embedding models.
const DefaultEncoding = "cl100k_base"

// Tokenizer converts text to token IDs and back. Chunk boundaries are measured
// in its units, so it must share the embedding model's vocabulary.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// TiktokenTokenizer is a BPE tokenizer backed by tiktoken-go.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer returns a tokenizer for encoding, or for the encoding
// of model when encoding is empty. Unknown models fall back to cl100k_base.
// The first call may download the BPE ranks; set TIKTOKEN_CACHE_DIR to cache them.
func NewTiktokenTokenizer(encoding, model string) (*TiktokenTokenizer, error) {
	if encoding != "" {
		enc, err := tiktoken.GetEncoding(encoding)
		if err != nil {
			return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
		}
		return &TiktokenTokenizer{enc: enc}, nil
	}
	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			return &TiktokenTokenizer{enc: enc}, nil
		}
	}
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", DefaultEncoding, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

// Encode returns the BPE token IDs of text. Special-token text is encoded as ordinary text.
func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode returns the text for tokens.
func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// WordTokenizer treats each whitespace-separated word as one token. IDs are
// assigned on first sight. Decoding joins words with single spaces, so it is
// exact only for whitespace-normalized text. Used offline and in tests.
type WordTokenizer struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

// NewWordTokenizer returns an empty word tokenizer.
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{ids: make(map[string]int)}
}

// Encode returns one ID per word.
func (t *WordTokenizer) Encode(text string) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := strings.Fields(text)
	tokens := make([]int, len(fields))
	for i, w := range fields {
		id, ok := t.ids[w]
		if !ok {
			id = len(t.words)
			t.ids[w] = id
			t.words = append(t.words, w)
		}
		tokens[i] = id
	}
	return tokens
}

// Decode joins the words for tokens with spaces. Unknown IDs are dropped.
func (t *WordTokenizer) Decode(tokens []int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	words := make([]string, 0, len(tokens))
	for _, id := range tokens {
		if id >= 0 && id < len(t.words) {
			words = append(words, t.words[id])
		}
	}
	return strings.Join(words, " ")
}
