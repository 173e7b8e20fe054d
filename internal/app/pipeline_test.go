package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docbrain/internal/model"
	"docbrain/internal/platform/sqlite"
	"docbrain/internal/repository"
)

func newTestPipelineRepo(t *testing.T) *repository.ChunkRepository {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close(db) })
	if err := db.AutoMigrate(&model.Chunk{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return repository.NewChunkRepository(db)
}

func seedScoredChunks(t *testing.T, repo *repository.ChunkRepository) {
	t.Helper()
	chunks := []model.Chunk{
		{Source: "manual.pdf", Page: 1, Seq: 0, Content: "primero"},
		{Source: "manual.pdf", Page: 1, Seq: 1, Content: "segundo"},
		{Source: "manual.pdf", Page: 2, Seq: 2, Content: "tercero"},
	}
	chunks[0].SetEmbedding([]float32{1, 0, 0})
	chunks[1].SetEmbedding([]float32{0.8, 0.6, 0})
	chunks[2].SetEmbedding([]float32{0, 1, 0})
	if err := repo.CreateBatch(chunks); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func unitQueryEmbedder() *fakeEmbedder {
	return &fakeEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}
}

func TestRetrieveRanksByDescendingSimilarity(t *testing.T) {
	repo := newTestPipelineRepo(t)
	seedScoredChunks(t, repo)
	p := newAnswerPipeline(repo, unitQueryEmbedder(), &fakeChatter{}, 2, 0)

	texts, err := p.Retrieve(context.Background(), "¿qué es?")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected top 2, got %d", len(texts))
	}
	if texts[0] != "primero" || texts[1] != "segundo" {
		t.Fatalf("wrong ranking: %v", texts)
	}
}

func TestRetrieveReturnsMinOfKAndTotal(t *testing.T) {
	repo := newTestPipelineRepo(t)
	seedScoredChunks(t, repo)
	p := newAnswerPipeline(repo, unitQueryEmbedder(), &fakeChatter{}, 10, 0)

	texts, err := p.Retrieve(context.Background(), "¿qué es?")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(texts) != 3 {
		t.Fatalf("expected all 3 chunks, got %d", len(texts))
	}
}

func TestRetrieveMinScoreCutoff(t *testing.T) {
	repo := newTestPipelineRepo(t)
	seedScoredChunks(t, repo)
	p := newAnswerPipeline(repo, unitQueryEmbedder(), &fakeChatter{}, 10, 0.5)

	texts, err := p.Retrieve(context.Background(), "¿qué es?")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected orthogonal chunk dropped, got %v", texts)
	}
}

func TestInvokeWithoutHistorySkipsReformulation(t *testing.T) {
	repo := newTestPipelineRepo(t)
	seedScoredChunks(t, repo)
	chatter := &fakeChatter{replies: []string{"El compresor reduce la dinámica."}}
	p := newAnswerPipeline(repo, unitQueryEmbedder(), chatter, 2, 0)

	answer, err := p.Invoke(context.Background(), "¿Qué hace el compresor?", nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if answer != "El compresor reduce la dinámica." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if chatter.callCount() != 1 {
		t.Fatalf("expected a single model call (synthesis only), got %d", chatter.callCount())
	}

	system := chatter.call(0)[0]
	if system.Role != "system" {
		t.Fatalf("first message must be the system prompt, got %s", system.Role)
	}
	if !strings.Contains(system.Content, "primero\n\nsegundo") {
		t.Fatalf("context must join chunks with double newline:\n%s", system.Content)
	}
}

func TestInvokeReformulatesFollowUpQuestion(t *testing.T) {
	repo := newTestPipelineRepo(t)
	seedScoredChunks(t, repo)
	embedder := unitQueryEmbedder()
	chatter := &fakeChatter{replies: []string{
		"¿Cómo configuro la compresión?",
		"Ajusta el umbral y la proporción.",
	}}
	p := newAnswerPipeline(repo, embedder, chatter, 2, 0)

	history := []model.Turn{
		{Role: model.RoleUser, Content: "Háblame de la compresión."},
		{Role: model.RoleAssistant, Content: "La compresión reduce el rango dinámico."},
	}
	answer, err := p.Invoke(context.Background(), "¿Cómo lo configuro?", history)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if answer != "Ajusta el umbral y la proporción." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if chatter.callCount() != 2 {
		t.Fatalf("expected reformulation + synthesis calls, got %d", chatter.callCount())
	}

	// The similarity query must be the standalone rewrite, not the bare
	// pronoun form.
	embedded := embedder.lastCall()
	if !strings.Contains(embedded, "compresión") {
		t.Fatalf("reformulated query must carry the topic, got %q", embedded)
	}
	if embedded == "¿Cómo lo configuro?" {
		t.Fatal("query was not reformulated")
	}
}

func TestReformulateWithEmptyHistoryMakesNoModelCall(t *testing.T) {
	chatter := &fakeChatter{}
	p := newAnswerPipeline(newTestPipelineRepo(t), unitQueryEmbedder(), chatter, 2, 0)

	query, err := p.Reformulate(context.Background(), "¿Qué es la reverb?", nil)
	if err != nil {
		t.Fatalf("Reformulate failed: %v", err)
	}
	if query != "¿Qué es la reverb?" {
		t.Fatalf("standalone question must pass through, got %q", query)
	}
	if chatter.callCount() != 0 {
		t.Fatalf("no model call expected, got %d", chatter.callCount())
	}
}

func TestInvokeModelFailurePropagates(t *testing.T) {
	repo := newTestPipelineRepo(t)
	seedScoredChunks(t, repo)
	chatter := &fakeChatter{err: errors.New("connection refused")}
	p := newAnswerPipeline(repo, unitQueryEmbedder(), chatter, 2, 0)

	if _, err := p.Invoke(context.Background(), "¿Qué es?", nil); err == nil {
		t.Fatal("expected error from model failure")
	}
}

func TestFormatContext(t *testing.T) {
	got := formatContext([]string{"uno", "dos", "tres"})
	if got != "uno\n\ndos\n\ntres" {
		t.Fatalf("unexpected context block: %q", got)
	}
}
