package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"docbrain/internal/ai"
	"docbrain/internal/model"
	"docbrain/internal/repository"
)

const reformulateSystemPrompt = "Dada una conversación y la última pregunta del usuario, " +
	"que podría hacer referencia al contexto previo, reformula la pregunta para que sea " +
	"una pregunta independiente que pueda entenderse sin el historial. NO respondas la " +
	"pregunta: solo reformúlala si es necesario y, en caso contrario, devuélvela tal cual."

const synthesizeSystemPrompt = "Eres un asistente para tareas de preguntas y respuestas. " +
	"Utiliza únicamente los siguientes fragmentos de contexto recuperado para responder a " +
	"la pregunta. Si no sabes la respuesta, di que no la sabes. Utiliza un máximo de tres " +
	"frases y sé conciso. RESPONDE SIEMPRE EN ESPAÑOL.\n\nContexto:\n%s"

// AnswerPipeline is the statically composed chain
// reformulate -> retrieve -> format context -> synthesize, bound to the store
// state at build time. Each stage is an ordinary method with a typed contract.
type AnswerPipeline struct {
	chunks   *repository.ChunkRepository
	embedder ai.Embedder
	chatter  ai.Chatter
	topK     int
	minScore float64
}

func newAnswerPipeline(chunks *repository.ChunkRepository, embedder ai.Embedder, chatter ai.Chatter, topK int, minScore float64) *AnswerPipeline {
	return &AnswerPipeline{
		chunks:   chunks,
		embedder: embedder,
		chatter:  chatter,
		topK:     topK,
		minScore: minScore,
	}
}

// Invoke answers the question against the indexed documents, using history to
// resolve context-dependent phrasing.
func (p *AnswerPipeline) Invoke(ctx context.Context, question string, history []model.Turn) (string, error) {
	query, err := p.Reformulate(ctx, question, history)
	if err != nil {
		return "", err
	}
	texts, err := p.Retrieve(ctx, query)
	if err != nil {
		return "", err
	}
	return p.Synthesize(ctx, formatContext(texts), history, question)
}

// Reformulate rewrites the question into a standalone form using the prior
// turns. With no history the question is already standalone and no model call
// is made.
func (p *AnswerPipeline) Reformulate(ctx context.Context, question string, history []model.Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: reformulateSystemPrompt})
	for _, turn := range history {
		messages = append(messages, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: question})

	out, err := p.chatter.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("reformulate question failed: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return question, nil
	}
	return out, nil
}

// Retrieve embeds the query and returns the top-k most similar chunk texts,
// ordered by descending similarity. minScore of 0 keeps the raw top-k even
// when weakly relevant.
func (p *AnswerPipeline) Retrieve(ctx context.Context, query string) ([]string, error) {
	queryVec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	all, err := p.chunks.All()
	if err != nil {
		return nil, fmt.Errorf("load chunks failed: %w", err)
	}

	scored := make([]scoredChunk, len(all))
	for i := range all {
		scored[i] = scoredChunk{
			chunk: all[i],
			score: cosineSimilarity(queryVec, all[i].EmbeddingVector()),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	texts := make([]string, 0, p.topK)
	for _, sc := range scored {
		if len(texts) == p.topK {
			break
		}
		if p.minScore > 0 && sc.score < p.minScore {
			break
		}
		texts = append(texts, sc.chunk.Content)
	}
	return texts, nil
}

// Synthesize asks the chat model for an answer constrained to contextBlock.
func (p *AnswerPipeline) Synthesize(ctx context.Context, contextBlock string, history []model.Turn, question string) (string, error) {
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(synthesizeSystemPrompt, contextBlock),
	})
	for _, turn := range history {
		messages = append(messages, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: question})

	answer, err := p.chatter.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("synthesize answer failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func formatContext(texts []string) string {
	return strings.Join(texts, "\n\n")
}

type scoredChunk struct {
	chunk model.Chunk
	score float64
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
