package command

import (
	"context"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// The "/register" path: every student presses it themselves. Re-registration
// is idempotent - it refreshes the display fields and changes nothing else.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the identity of the registering student.
type RegisterStudentCommand struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// Student is the adapter-resolved identity of the registering user.
	Student classroom.UserInfo
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("register_student: validation failed: %w", err)
	}
	if c.Student.TgID == 0 {
		return fmt.Errorf("register_student: student tg id is required")
	}
	return nil
}

// RegisterStudentHandler handles RegisterStudentCommand.
type RegisterStudentHandler struct {
	repo  classroom.Repository
	cache classroom.AttendanceCache
	log   *logger.Logger
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler. The cache
// is optional.
func NewRegisterStudentHandler(repo classroom.Repository, cache classroom.AttendanceCache, log *logger.Logger) *RegisterStudentHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RegisterStudentHandler{repo: repo, cache: cache, log: log}
}

// Handle executes the command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.repo.AddStudent(ctx, cmd.ChatID, cmd.Student); err != nil {
		return err
	}

	// Membership scopes the attendance view, so the cached counts are stale.
	invalidateAttendance(ctx, h.cache, h.log, cmd.ChatID)

	h.log.Info("student registered",
		logger.ChatID(cmd.ChatID),
		logger.TgID(cmd.Student.TgID),
		logger.Username(cmd.Student.Username),
	)
	return nil
}

// invalidateAttendance drops the cached attendance view. Cache failures are
// logged, never surfaced: the view rebuilds from the store on the next read.
func invalidateAttendance(ctx context.Context, cache classroom.AttendanceCache, log *logger.Logger, chatID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, chatID); err != nil {
		log.Warn("failed to invalidate attendance cache",
			logger.ChatID(chatID),
			logger.Err(err),
		)
	}
}
