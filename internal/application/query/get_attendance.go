package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ATTENDANCE QUERY
// Per-student attendance counts for current members. Counts pass through a
// cache; commands that change the roster or attendance invalidate it.
// ══════════════════════════════════════════════════════════════════════════════

// GetAttendanceQuery requests attendance counts for a chat's course.
type GetAttendanceQuery struct {
	// ChatID is the external chat identity.
	ChatID string `validate:"required"`
}

// Validate validates the query.
func (q GetAttendanceQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_attendance: validation failed: %w", err)
	}
	return nil
}

// GetAttendanceHandler handles GetAttendanceQuery.
type GetAttendanceHandler struct {
	repo  classroom.Repository
	cache classroom.AttendanceCache
	log   *logger.Logger
}

// NewGetAttendanceHandler creates a new GetAttendanceHandler. cache may be nil.
func NewGetAttendanceHandler(repo classroom.Repository, cache classroom.AttendanceCache, log *logger.Logger) *GetAttendanceHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetAttendanceHandler{repo: repo, cache: cache, log: log}
}

// Handle executes the query. Counts map username to number of lessons
// attended; students without any attendance are absent from the mapping.
func (h *GetAttendanceHandler) Handle(ctx context.Context, q GetAttendanceQuery) (map[string]int, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		counts, err := h.cache.Get(ctx, q.ChatID)
		if err == nil {
			return counts, nil
		}
		if !errors.Is(err, classroom.ErrCacheMiss) {
			h.log.Warn("attendance cache read failed",
				logger.ChatID(q.ChatID),
				logger.Err(err),
			)
		}
	}

	counts, err := h.repo.GetAttendance(ctx, q.ChatID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, q.ChatID, counts); err != nil {
			h.log.Warn("attendance cache write failed",
				logger.ChatID(q.ChatID),
				logger.Err(err),
			)
		}
	}
	return counts, nil
}
