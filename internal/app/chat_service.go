package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"docbrain/internal/model"
	"docbrain/internal/pkg/logger"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
)

// Fixed replies for states where no model call is made or the call failed.
const (
	msgLibraryEmpty = "⚠️ La biblioteca está vacía. Sube documentos en la barra lateral."
	errorPrefix     = "⚠️ Error: "
)

// ChatService drives conversations against the Knowledge Engine. Model and
// store faults degrade to error-marked assistant turns; the session never
// crashes and the conversation log always gains an entry for the turn.
type ChatService struct {
	engine   *KnowledgeEngine
	sessions *SessionStore
}

func NewChatService(engine *KnowledgeEngine) *ChatService {
	return &ChatService{
		engine:   engine,
		sessions: NewSessionStore(),
	}
}

func (s *ChatService) CreateSession() *Session {
	return s.sessions.Create()
}

func (s *ChatService) DeleteSession(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if !s.sessions.Delete(id) {
		return ErrSessionNotFound
	}
	return nil
}

func (s *ChatService) History(id string) ([]model.Turn, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	turns, ok := s.sessions.History(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return turns, nil
}

// Ask answers the question within the session. With an empty library the
// fixed empty-library message is returned without any model call. Pipeline
// faults become an error-marked answer, not a failure of Ask itself.
func (s *ChatService) Ask(ctx context.Context, sessionID, content string) (model.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return model.Turn{}, ErrInvalidInput
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Turn{}, ErrMessageEmpty
	}

	history, ok := s.sessions.History(sessionID)
	if !ok {
		return model.Turn{}, ErrSessionNotFound
	}

	var answer string
	pipeline, ready := s.engine.AnswerPipeline()
	if !ready {
		answer = msgLibraryEmpty
	} else {
		generated, err := pipeline.Invoke(ctx, content, history)
		if err != nil {
			logger.Error("answer pipeline failed", err)
			answer = errorPrefix + err.Error()
		} else if generated == "" {
			answer = errorPrefix + "el modelo devolvió una respuesta vacía"
		} else {
			answer = generated
		}
	}

	now := time.Now()
	userTurn := model.Turn{Role: model.RoleUser, Content: content, CreatedAt: now}
	assistantTurn := model.Turn{Role: model.RoleAssistant, Content: answer, CreatedAt: now}
	if !s.sessions.Append(sessionID, userTurn) || !s.sessions.Append(sessionID, assistantTurn) {
		return model.Turn{}, ErrSessionNotFound
	}
	return assistantTurn, nil
}
