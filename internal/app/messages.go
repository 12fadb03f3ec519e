package app

import (
	"context"
	"time"

	"github.com/campfield/lineup-companion/internal/store"
)

// MessagesUsecase defines the site notices use case.
type MessagesUsecase interface {
	Visible(ctx context.Context, now time.Time) ([]store.Message, error)
}

// MessageStore defines store operations needed by MessagesService.
type MessageStore interface {
	VisibleMessages(ctx context.Context, now time.Time) ([]store.Message, error)
}

// MessagesService implements MessagesUsecase.
type MessagesService struct {
	Store MessageStore
}

// Visible returns the notices whose visibility window contains now.
func (s *MessagesService) Visible(ctx context.Context, now time.Time) ([]store.Message, error) {
	return s.Store.VisibleMessages(ctx, now)
}
