package classroom

import (
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// The contract the application layer depends on. The implementation lives in
// infrastructure/persistence; every mutating method runs in one transaction.
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the course-scoped data access layer. All methods take the
// external chat identity and resolve the single course bound to it.
type Repository interface {
	// GetCourse returns the course bound to the chat with its membership.
	// Returns ErrCourseNotFound when the chat has no course.
	GetCourse(ctx context.Context, chatID string) (*CourseInfo, error)

	// GetOrCreateCourse returns the existing course (existed=true, no
	// mutation) or creates it, resolving or creating the requesting user and
	// binding it as the teacher, all in one transaction.
	GetOrCreateCourse(ctx context.Context, chatID string, requester UserInfo, title, group string) (existed bool, info *CourseInfo, err error)

	// AddStudent resolves the user by tg id or creates it (ErrMissingProfile
	// when display fields are absent on creation), refreshes username/name
	// last-write-wins, and binds the user to the course as a student if not
	// yet bound. Re-registration is a harmless no-op aside from the refresh.
	// Returns ErrTeacherAsStudent when the user is the course teacher.
	AddStudent(ctx context.Context, chatID string, info UserInfo) error

	// RemoveStudent deletes the student-role membership of the user with the
	// given username. Returns ErrStudentNotFound when no such user exists and
	// ErrNotCourseStudent when the user is not a student of this course (the
	// teacher's membership is never touched). Attendance history persists.
	RemoveStudent(ctx context.Context, chatID, username string) error

	// IsTeacher reports whether the tg identity holds the teacher membership.
	// Propagates ErrCourseNotFound.
	IsTeacher(ctx context.Context, chatID string, tgID int64) (bool, error)

	// StartLesson appends a lesson to the course. Titles are not deduplicated;
	// lesson identity is purely structural.
	StartLesson(ctx context.Context, chatID, title string, lessonType LessonType, date time.Time) (*Lesson, error)

	// MarkPresent creates attendance rows for the current lesson and returns
	// the skip list (unknown students and already-present candidates).
	// Returns ErrLessonNotFound when the course has no lessons.
	MarkPresent(ctx context.Context, chatID string, candidates []string) (skipped []string, err error)

	// GradeStudents applies the mark to the existing attendance rows of the
	// current lesson and returns the skip list (candidates never marked
	// present). Grading never implicitly creates presence.
	GradeStudents(ctx context.Context, chatID string, candidates []string, mark Mark) (skipped []string, err error)

	// GetAttendance returns username -> lifetime attendance count across all
	// lessons of the course, restricted to users currently bound to it.
	GetAttendance(ctx context.Context, chatID string) (map[string]int, error)

	// GetPerformance returns username -> ordered history of grades (when
	// fetchGrades) or participation flags, in attendance-row order.
	GetPerformance(ctx context.Context, chatID string, fetchGrades bool) (map[string][]PerformanceValue, error)

	// GetPresented returns the usernames marked present for the current
	// lesson, scoped by course membership.
	GetPresented(ctx context.Context, chatID string) ([]string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// ErrCacheMiss is returned by AttendanceCache.Get when no cached view exists.
var ErrCacheMiss = errors.New("attendance view not cached")

// AttendanceCache is an optional store-resident cache of the per-course
// attendance-count view. Implementations live in infrastructure; the zero
// deployment runs without one.
type AttendanceCache interface {
	// Get returns the cached counts or ErrCacheMiss.
	Get(ctx context.Context, chatID string) (map[string]int, error)

	// Set replaces the cached counts for the chat.
	Set(ctx context.Context, chatID string, counts map[string]int) error

	// Invalidate drops the cached counts for the chat.
	Invalidate(ctx context.Context, chatID string) error
}
