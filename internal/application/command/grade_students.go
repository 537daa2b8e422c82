package command

import (
	"context"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE STUDENTS COMMAND
// Applies one mark (participation flag or numeric grade) to the current
// lesson's attendance rows of the named students. Students without an
// attendance row are skipped.
// ══════════════════════════════════════════════════════════════════════════════

// GradeStudentsCommand contains the data to grade students.
type GradeStudentsCommand struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// Usernames are the candidate student usernames.
	Usernames []string `validate:"required,min=1"`

	// Mark is the raw mark token: "+" or "-" for participation, or a
	// decimal grade between 0 and 10.
	Mark string `validate:"required"`
}

// Validate validates the command and parses the mark token.
func (c GradeStudentsCommand) Validate() (classroom.Mark, error) {
	if err := validate.Struct(c); err != nil {
		return classroom.Mark{}, fmt.Errorf("grade_students: validation failed: %w", err)
	}
	return classroom.ParseMark(c.Mark)
}

// GradeStudentsResult is the outcome of grading.
type GradeStudentsResult struct {
	// Graded is the number of attendance rows updated.
	Graded int

	// Skipped lists usernames with no attendance row for the current
	// lesson.
	Skipped []string
}

// GradeStudentsHandler handles GradeStudentsCommand.
type GradeStudentsHandler struct {
	repo classroom.Repository
	log  *logger.Logger
}

// NewGradeStudentsHandler creates a new GradeStudentsHandler.
func NewGradeStudentsHandler(repo classroom.Repository, log *logger.Logger) *GradeStudentsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GradeStudentsHandler{repo: repo, log: log}
}

// Handle executes the command.
func (h *GradeStudentsHandler) Handle(ctx context.Context, cmd GradeStudentsCommand) (*GradeStudentsResult, error) {
	mark, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	candidates := classroom.DedupCandidates(cmd.Usernames)

	skipped, err := h.repo.GradeStudents(ctx, cmd.ChatID, candidates, mark)
	if err != nil {
		return nil, err
	}

	graded := len(candidates) - len(skipped)
	if len(skipped) > 0 {
		h.log.Warn("some students skipped while grading",
			logger.ChatID(cmd.ChatID),
			logger.SkippedCount(len(skipped)),
		)
	}
	h.log.Info("students graded",
		logger.ChatID(cmd.ChatID),
		logger.Int("graded", graded),
		logger.String("mark", cmd.Mark),
	)

	return &GradeStudentsResult{Graded: graded, Skipped: skipped}, nil
}
