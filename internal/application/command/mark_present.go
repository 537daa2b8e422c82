package command

import (
	"context"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK PRESENT COMMAND
// Records attendance for the current lesson. Unknown usernames and already
// marked students are skipped, never an error.
// ══════════════════════════════════════════════════════════════════════════════

// MarkPresentCommand contains the data to mark students present.
type MarkPresentCommand struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// Usernames are the candidate student usernames. Duplicates collapse
	// to a single marking attempt.
	Usernames []string `validate:"required,min=1"`
}

// Validate validates the command.
func (c MarkPresentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("mark_present: validation failed: %w", err)
	}
	return nil
}

// MarkPresentResult is the outcome of marking attendance.
type MarkPresentResult struct {
	// Marked is the number of students newly marked present.
	Marked int

	// Skipped lists usernames that were not marked: unknown in the
	// course or already marked for the current lesson.
	Skipped []string
}

// MarkPresentHandler handles MarkPresentCommand.
type MarkPresentHandler struct {
	repo  classroom.Repository
	cache classroom.AttendanceCache
	log   *logger.Logger
}

// NewMarkPresentHandler creates a new MarkPresentHandler. cache may be nil.
func NewMarkPresentHandler(repo classroom.Repository, cache classroom.AttendanceCache, log *logger.Logger) *MarkPresentHandler {
	if log == nil {
		log = logger.Default()
	}
	return &MarkPresentHandler{repo: repo, cache: cache, log: log}
}

// Handle executes the command.
func (h *MarkPresentHandler) Handle(ctx context.Context, cmd MarkPresentCommand) (*MarkPresentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	candidates := classroom.DedupCandidates(cmd.Usernames)

	skipped, err := h.repo.MarkPresent(ctx, cmd.ChatID, candidates)
	if err != nil {
		return nil, err
	}

	invalidateAttendance(ctx, h.cache, h.log, cmd.ChatID)

	marked := len(candidates) - len(skipped)
	if len(skipped) > 0 {
		h.log.Warn("some students skipped while marking attendance",
			logger.ChatID(cmd.ChatID),
			logger.SkippedCount(len(skipped)),
		)
	}
	h.log.Info("attendance marked",
		logger.ChatID(cmd.ChatID),
		logger.Int("marked", marked),
	)

	return &MarkPresentResult{Marked: marked, Skipped: skipped}, nil
}
