package query

import (
	"context"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK IS TEACHER QUERY
// ══════════════════════════════════════════════════════════════════════════════

// CheckIsTeacherQuery asks whether a user is the teacher of the chat's course.
type CheckIsTeacherQuery struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// TgID is the user's external identity.
	TgID int64 `validate:"required"`
}

// Validate validates the query.
func (q CheckIsTeacherQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("check_is_teacher: validation failed: %w", err)
	}
	return nil
}

// CheckIsTeacherHandler handles CheckIsTeacherQuery.
type CheckIsTeacherHandler struct {
	repo classroom.Repository
	log  *logger.Logger
}

// NewCheckIsTeacherHandler creates a new CheckIsTeacherHandler.
func NewCheckIsTeacherHandler(repo classroom.Repository, log *logger.Logger) *CheckIsTeacherHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CheckIsTeacherHandler{repo: repo, log: log}
}

// Handle executes the query. A missing course or unknown user reports false
// without error.
func (h *CheckIsTeacherHandler) Handle(ctx context.Context, q CheckIsTeacherQuery) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, err
	}
	return h.repo.IsTeacher(ctx, q.ChatID, q.TgID)
}
