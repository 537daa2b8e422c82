package command

import (
	"context"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE STUDENT COMMAND
// The "/ignore" path: the named user is no longer considered a student. Only
// the membership row is deleted - the user and its attendance history stay.
// ══════════════════════════════════════════════════════════════════════════════

// RemoveStudentCommand names the student to remove from the course.
type RemoveStudentCommand struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// Username is the addressing key, with any leading marker already
	// stripped by the adapter.
	Username string `validate:"required"`
}

// Validate validates the command.
func (c RemoveStudentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("remove_student: validation failed: %w", err)
	}
	return nil
}

// RemoveStudentHandler handles RemoveStudentCommand.
type RemoveStudentHandler struct {
	repo  classroom.Repository
	cache classroom.AttendanceCache
	log   *logger.Logger
}

// NewRemoveStudentHandler creates a new RemoveStudentHandler. The cache is
// optional.
func NewRemoveStudentHandler(repo classroom.Repository, cache classroom.AttendanceCache, log *logger.Logger) *RemoveStudentHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RemoveStudentHandler{repo: repo, cache: cache, log: log}
}

// Handle executes the command.
func (h *RemoveStudentHandler) Handle(ctx context.Context, cmd RemoveStudentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.repo.RemoveStudent(ctx, cmd.ChatID, cmd.Username); err != nil {
		return err
	}

	// The removed student drops out of the attendance view immediately.
	invalidateAttendance(ctx, h.cache, h.log, cmd.ChatID)

	h.log.Info("student removed",
		logger.ChatID(cmd.ChatID),
		logger.Username(cmd.Username),
	)
	return nil
}
