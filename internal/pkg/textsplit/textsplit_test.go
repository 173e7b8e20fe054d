package textsplit

import (
	"strings"
	"testing"
)

func TestSplitShortText(t *testing.T) {
	s := New(1000, 200)
	chunks := s.Split("hello world")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello world" {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitEmpty(t *testing.T) {
	s := New(1000, 200)
	if chunks := s.Split(""); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
	if chunks := s.Split("   \n  "); chunks != nil {
		t.Fatalf("expected nil for whitespace input, got %v", chunks)
	}
}

func TestSplit2500CharsGivesFourChunks(t *testing.T) {
	text := strings.Repeat("a", 2500)
	s := New(1000, 200)
	chunks := s.Split(text)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1000 || len(chunks[1]) != 1000 {
		t.Fatalf("expected full first windows, got %d and %d", len(chunks[0]), len(chunks[1]))
	}
	for i, c := range chunks {
		if len(c) > 1000 {
			t.Fatalf("chunk %d exceeds size: %d", i, len(c))
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("El manual describe el compresor y sus ajustes. ", 120)
	s := New(1000, 200)
	first := s.Split(text)
	second := New(1000, 200).Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("x", 700)
	para2 := strings.Repeat("y", 700)
	text := para1 + "\n\n" + para2
	s := New(1000, 200)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// The first window spans the paragraph break, so the cut must land there
	// rather than mid-paragraph.
	if strings.Contains(chunks[0], "y") {
		t.Fatalf("first chunk crossed the paragraph boundary: %q", chunks[0][len(chunks[0])-20:])
	}
}

func TestSplitOverlapCarriesText(t *testing.T) {
	text := strings.Repeat("b", 1500)
	s := New(1000, 200)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// Second chunk starts 800 runes in, so 200 runes are shared with the first.
	if len(chunks[1]) != 700 {
		t.Fatalf("expected second chunk of 700 runes, got %d", len(chunks[1]))
	}
}

func TestSplitOverlapClampedWhenTooLarge(t *testing.T) {
	s := New(100, 500)
	chunks := s.Split(strings.Repeat("c", 300))
	if len(chunks) == 0 {
		t.Fatal("expected chunks despite invalid overlap")
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Fatalf("chunk %d exceeds size after clamp: %d", i, len(c))
		}
	}
}
