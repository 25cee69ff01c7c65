package service

import (
	"context"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/llm"

	"github.com/google/uuid"
)

type IHistoryService interface {
	// LoadContext returns the room's most recent turns in ascending
	// chronological order, ready to hand to the LLM provider.
	LoadContext(ctx context.Context, roomId uuid.UUID, limit int) ([]llm.Message, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory) IHistoryService {
	return &historyService{uowFactory: uowFactory}
}

func (s *historyService) LoadContext(ctx context.Context, roomId uuid.UUID, limit int) ([]llm.Message, error) {
	if limit <= 0 {
		limit = constant.ContextWindowLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Newest first to apply the window bound, then reversed: the provider
	// expects oldest-first turns.
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatRoomID{ChatRoomID: roomId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: limit},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		// Role was fixed at persistence time, no inference here.
		history = append(history, llm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return history, nil
}
