// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE QUERY
// ══════════════════════════════════════════════════════════════════════════════

var validate = validator.New()

// GetCourseQuery requests the course bound to a chat with its full roster.
type GetCourseQuery struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// Loud controls whether a missing course is logged as an error or
	// silently reported to the caller.
	Loud bool
}

// Validate validates the query.
func (q GetCourseQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_course: validation failed: %w", err)
	}
	return nil
}

// GetCourseHandler handles GetCourseQuery.
type GetCourseHandler struct {
	repo classroom.Repository
	log  *logger.Logger
}

// NewGetCourseHandler creates a new GetCourseHandler.
func NewGetCourseHandler(repo classroom.Repository, log *logger.Logger) *GetCourseHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetCourseHandler{repo: repo, log: log}
}

// Handle executes the query.
func (h *GetCourseHandler) Handle(ctx context.Context, q GetCourseQuery) (*classroom.CourseInfo, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	info, err := h.repo.GetCourse(ctx, q.ChatID)
	if err != nil {
		if classroom.IsNotFound(err) && q.Loud {
			h.log.Error("course not found", logger.ChatID(q.ChatID))
		}
		return nil, err
	}
	return info, nil
}
