// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// validate checks the struct tags on commands before they reach the store.
var validate = validator.New()

// ══════════════════════════════════════════════════════════════════════════════
// CREATE COURSE COMMAND
// The "/start"-equivalent: binds a course to the chat exactly once and makes
// the requester its teacher. A second attempt reports the existing course
// instead of mutating anything.
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseCommand contains the data to create a course for a chat.
type CreateCourseCommand struct {
	// ChatID is the external chat identity the course is bound to.
	ChatID string `validate:"required"`

	// Requester is the user issuing the command; becomes the teacher on
	// first creation.
	Requester classroom.UserInfo

	// Title is the course title, parsed from the chat title by the adapter.
	Title string `validate:"required"`

	// Group is the student group label.
	Group string `validate:"required"`
}

// Validate validates the command.
func (c CreateCourseCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("create_course: validation failed: %w", err)
	}
	if c.Requester.TgID == 0 {
		return fmt.Errorf("create_course: requester tg id is required")
	}
	return nil
}

// CreateCourseResult contains the outcome of the command.
type CreateCourseResult struct {
	// AlreadyExisted is true when a course was already bound to the chat;
	// Info then describes the existing course and nothing was mutated.
	AlreadyExisted bool

	// Info is the course with its resolved membership.
	Info *classroom.CourseInfo
}

// CreateCourseHandler handles CreateCourseCommand.
type CreateCourseHandler struct {
	repo classroom.Repository
	log  *logger.Logger
}

// NewCreateCourseHandler creates a new CreateCourseHandler.
func NewCreateCourseHandler(repo classroom.Repository, log *logger.Logger) *CreateCourseHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CreateCourseHandler{repo: repo, log: log}
}

// Handle executes the command.
func (h *CreateCourseHandler) Handle(ctx context.Context, cmd CreateCourseCommand) (*CreateCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	existed, info, err := h.repo.GetOrCreateCourse(ctx, cmd.ChatID, cmd.Requester, cmd.Title, cmd.Group)
	if err != nil {
		return nil, err
	}

	if existed {
		h.log.Warn("course already exists",
			logger.ChatID(cmd.ChatID),
			logger.CourseTitle(info.Course.Title),
		)
	} else {
		h.log.Info("course created",
			logger.ChatID(cmd.ChatID),
			logger.CourseTitle(info.Course.Title),
			logger.TgID(cmd.Requester.TgID),
		)
	}

	return &CreateCourseResult{AlreadyExisted: existed, Info: info}, nil
}
