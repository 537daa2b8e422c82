package command

import (
	"context"
	"fmt"
	"time"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// START LESSON COMMAND
// Opens a new lesson for the course. Lessons are append-only and identical
// titles are allowed; the new lesson becomes "current" for attendance and
// grading by virtue of its insertion order alone.
// ══════════════════════════════════════════════════════════════════════════════

// StartLessonCommand contains the data to start a lesson.
type StartLessonCommand struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`

	// Title is the lesson title.
	Title string `validate:"required"`

	// Type is the lesson type name ("lecture", "lab", "seminar"); empty
	// defaults to lab.
	Type string

	// Date is the lesson date; zero defaults to today. A past date is
	// allowed and does not affect which lesson is current.
	Date time.Time
}

// Validate validates the command and resolves the lesson type.
func (c StartLessonCommand) Validate() (classroom.LessonType, error) {
	if err := validate.Struct(c); err != nil {
		return classroom.DefaultLessonType, fmt.Errorf("start_lesson: validation failed: %w", err)
	}

	lessonType, ok := classroom.ParseLessonType(c.Type)
	if !ok {
		return classroom.DefaultLessonType, fmt.Errorf("start_lesson: unknown lesson type: %s", c.Type)
	}
	return lessonType, nil
}

// StartLessonHandler handles StartLessonCommand.
type StartLessonHandler struct {
	repo classroom.Repository
	log  *logger.Logger
}

// NewStartLessonHandler creates a new StartLessonHandler.
func NewStartLessonHandler(repo classroom.Repository, log *logger.Logger) *StartLessonHandler {
	if log == nil {
		log = logger.Default()
	}
	return &StartLessonHandler{repo: repo, log: log}
}

// Handle executes the command and returns the created lesson.
func (h *StartLessonHandler) Handle(ctx context.Context, cmd StartLessonCommand) (*classroom.Lesson, error) {
	lessonType, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	lesson, err := h.repo.StartLesson(ctx, cmd.ChatID, cmd.Title, lessonType, cmd.Date)
	if err != nil {
		return nil, err
	}

	h.log.Info("lesson started",
		logger.ChatID(cmd.ChatID),
		logger.LessonID(lesson.ID),
		logger.String("lesson_title", lesson.Title),
		logger.String("lesson_type", lesson.Type.String()),
	)
	return lesson, nil
}
