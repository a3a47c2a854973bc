package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// maxThreadExchanges caps each chat thread; the oldest exchange is evicted.
const maxThreadExchanges = 50

// chatApology is the fixed answer shown when the AI request fails.
const chatApology = "Sorry, I couldn't process your question right now. Please try again."

// ChatService runs per-insight follow-up threads. Each thread allows at most
// one pending exchange: a question asked while another is unanswered is
// rejected without side effects. The question is inserted optimistically and
// the answer resolved asynchronously.
type ChatService struct {
	model  drepo.InsightModel
	logger *applogger.Logger

	mu      sync.Mutex
	threads map[string][]*models.ChatExchange
}

// NewChatService creates a chat service with no threads.
func NewChatService(model drepo.InsightModel, logger *applogger.Logger) *ChatService {
	return &ChatService{
		model:   model,
		logger:  logger,
		threads: make(map[string][]*models.ChatExchange),
	}
}

// Ask appends a pending exchange to the thread and resolves it in the
// background. Returns ErrPending if the thread already has an unanswered
// question.
func (s *ChatService) Ask(ctx context.Context, threadKey, question string, insight *models.Insight) error {
	s.mu.Lock()
	thread := s.threads[threadKey]
	if n := len(thread); n > 0 && thread[n-1].Pending {
		s.mu.Unlock()
		return ErrPending
	}

	ex := &models.ChatExchange{
		Question:  question,
		Pending:   true,
		Timestamp: time.Now(),
	}
	thread = append(thread, ex)
	if len(thread) > maxThreadExchanges {
		thread = thread[len(thread)-maxThreadExchanges:]
	}
	s.threads[threadKey] = thread
	s.mu.Unlock()

	// the caller's request finishes before the answer arrives; detach from
	// its cancellation but keep its values
	go s.resolve(context.WithoutCancel(ctx), ex, question, insight)
	return nil
}

// resolve fills in the exchange's answer. On failure the fixed apology is
// used; either way the exchange leaves the pending state.
func (s *ChatService) resolve(ctx context.Context, ex *models.ChatExchange, question string, insight *models.Insight) {
	answer, err := s.model.Answer(ctx, question, insight)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("chat: answer failed", applogger.Error(err))
		ex.Answer = chatApology
	} else {
		ex.Answer = answer
	}
	ex.Pending = false
}

// History returns a copy of the thread, oldest first. A missing thread
// yields an empty slice.
func (s *ChatService) History(threadKey string) []models.ChatExchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread := s.threads[threadKey]
	out := make([]models.ChatExchange, len(thread))
	for i, ex := range thread {
		out[i] = *ex
	}
	return out
}

// Pending reports whether the thread has an unanswered question.
func (s *ChatService) Pending(threadKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread := s.threads[threadKey]
	n := len(thread)
	return n > 0 && thread[n-1].Pending
}
