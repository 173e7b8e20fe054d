package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"docbrain/internal/ai"
	"docbrain/internal/pkg/pdfextract"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls []string
	err   error
	fn    func(text string) []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.fn != nil {
		return f.fn(text), nil
	}
	return keywordVector(text), nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeEmbedder) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

// keywordVector gives texts about the same topic nearby vectors, so retrieval
// ranking in tests is predictable.
func keywordVector(text string) []float32 {
	return []float32{
		float32(strings.Count(text, "compresión")),
		float32(strings.Count(text, "reverb")),
		1,
	}
}

type fakeChatter struct {
	mu      sync.Mutex
	replies []string
	calls   [][]ai.ChatMessage
	err     error
}

func (f *fakeChatter) Chat(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make([]ai.ChatMessage, len(messages))
	copy(copied, messages)
	f.calls = append(f.calls, copied)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeChatter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeChatter) call(i int) []ai.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

type fakeLoader struct {
	pages []pdfextract.Page
	err   error
}

func (f *fakeLoader) load(string) ([]pdfextract.Page, error) {
	return f.pages, f.err
}

func onePage(text string) []pdfextract.Page {
	return []pdfextract.Page{{Number: 1, Text: text}}
}

func newTestEngine(t *testing.T, embedder *fakeEmbedder, chatter *fakeChatter, loader *fakeLoader, cfg EngineConfig) *KnowledgeEngine {
	t.Helper()
	if cfg.StoreDir == "" {
		cfg.StoreDir = filepath.Join(t.TempDir(), "store")
	}
	e := NewKnowledgeEngine(cfg, embedder, chatter, loader.load)
	t.Cleanup(func() { _ = e.Close() })
	return e
}
