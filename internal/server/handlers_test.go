package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/sanad/internal/config"
	"go.uber.org/zap"
)

type mockAsker struct {
	got    string
	answer string
	err    error
}

func (m *mockAsker) Ask(_ context.Context, q string) (string, error) {
	m.got = q
	return m.answer, m.err
}

type mockCounter struct {
	n   int
	err error
}

func (m mockCounter) Count(context.Context) (int, error) { return m.n, m.err }

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("response is not JSON: %q", rec.Body.String())
		}
	}
	return rec, out
}

func TestHandleAsk(t *testing.T) {
	asker := &mockAsker{answer: "Riba is prohibited [Source: Quran — Surah 2, Ayah 275]."}
	s := NewServer(asker, nil, config.Default(), zap.NewNop())

	rec, out := doRequest(t, s, http.MethodPost, "/ask", `{"question":"  What is riba?  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if out["answer"] != asker.answer {
		t.Errorf("answer = %v", out["answer"])
	}
	if asker.got != "What is riba?" {
		t.Errorf("question not trimmed: %q", asker.got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHandleAsk_BadRequests(t *testing.T) {
	s := NewServer(&mockAsker{}, nil, config.Default(), zap.NewNop())
	for _, body := range []string{`{"question":"   "}`, `{}`, `not json`, ``} {
		rec, out := doRequest(t, s, http.MethodPost, "/ask", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, rec.Code)
		}
		if out["error"] != "Please enter a question." {
			t.Errorf("body %q: error = %v", body, out["error"])
		}
	}
}

func TestHandleAsk_PipelineError(t *testing.T) {
	s := NewServer(&mockAsker{err: errors.New("retrieve: connection refused")}, nil, config.Default(), zap.NewNop())
	rec, out := doRequest(t, s, http.MethodPost, "/ask", `{"question":"What is sukuk?"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["error"] != "Server error: retrieve: connection refused" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestHandleHealth(t *testing.T) {
	s := NewServer(&mockAsker{}, nil, nil, nil)
	rec, out := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || out["status"] != "ok" {
		t.Errorf("health = %d %v", rec.Code, out)
	}
}

func TestHandleStatus(t *testing.T) {
	cfg := config.Default()
	s := NewServer(&mockAsker{}, mockCounter{n: 1234}, cfg, zap.NewNop())
	rec, out := doRequest(t, s, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["points"].(float64) != 1234 {
		t.Errorf("points = %v", out["points"])
	}
	c := out["config"].(map[string]interface{})
	if c["collection"] != "islamic_finance" || c["chunk_size"].(float64) != 800 {
		t.Errorf("config = %v", c)
	}

	s = NewServer(&mockAsker{}, mockCounter{err: errors.New("qdrant down")}, cfg, zap.NewNop())
	rec, _ = doRequest(t, s, http.MethodGet, "/status", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status with failing counter = %d", rec.Code)
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	s := NewServer(&mockAsker{}, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /ask = %d", rec.Code)
	}
}
