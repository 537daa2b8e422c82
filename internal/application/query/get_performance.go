package query

import (
	"context"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PERFORMANCE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetPerformanceQuery requests per-student performance for a chat's course.
type GetPerformanceQuery struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// FetchGrades selects numeric grades instead of participation flags.
	FetchGrades bool
}

// Validate validates the query.
func (q GetPerformanceQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_performance: validation failed: %w", err)
	}
	return nil
}

// GetPerformanceHandler handles GetPerformanceQuery.
type GetPerformanceHandler struct {
	repo classroom.Repository
	log  *logger.Logger
}

// NewGetPerformanceHandler creates a new GetPerformanceHandler.
func NewGetPerformanceHandler(repo classroom.Repository, log *logger.Logger) *GetPerformanceHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetPerformanceHandler{repo: repo, log: log}
}

// Handle executes the query. Values are ordered by attendance recording
// order; students without any attendance are absent from the mapping.
func (h *GetPerformanceHandler) Handle(ctx context.Context, q GetPerformanceQuery) (map[string][]classroom.PerformanceValue, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.repo.GetPerformance(ctx, q.ChatID, q.FetchGrades)
}
