package query

import (
	"context"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PRESENTED QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetPresentedQuery requests the usernames marked present for the current
// lesson.
type GetPresentedQuery struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`
}

// Validate validates the query.
func (q GetPresentedQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_presented: validation failed: %w", err)
	}
	return nil
}

// GetPresentedHandler handles GetPresentedQuery.
type GetPresentedHandler struct {
	repo classroom.Repository
	log  *logger.Logger
}

// NewGetPresentedHandler creates a new GetPresentedHandler.
func NewGetPresentedHandler(repo classroom.Repository, log *logger.Logger) *GetPresentedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetPresentedHandler{repo: repo, log: log}
}

// Handle executes the query. The returned slice follows attendance
// recording order for the current lesson.
func (h *GetPresentedHandler) Handle(ctx context.Context, q GetPresentedQuery) ([]string, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.repo.GetPresented(ctx, q.ChatID)
}
