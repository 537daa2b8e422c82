package classroom

import (
	"strconv"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON TYPES
// ══════════════════════════════════════════════════════════════════════════════

// LessonType enumerates the kinds of sessions a course holds.
type LessonType int

const (
	LessonLecture LessonType = 0
	LessonLab     LessonType = 1
	LessonSeminar LessonType = 2
)

// DefaultLessonType is used when a lesson is started without an explicit type.
const DefaultLessonType = LessonLab

// String returns the lesson type name.
func (t LessonType) String() string {
	switch t {
	case LessonLecture:
		return "lecture"
	case LessonLab:
		return "lab"
	case LessonSeminar:
		return "seminar"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the enumerated lesson types.
func (t LessonType) Valid() bool {
	return t == LessonLecture || t == LessonLab || t == LessonSeminar
}

// ParseLessonType parses a lesson type name. An empty token yields the
// default type.
func ParseLessonType(token string) (LessonType, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "":
		return DefaultLessonType, true
	case "lecture":
		return LessonLecture, true
	case "lab":
		return LessonLab, true
	case "seminar":
		return LessonSeminar, true
	default:
		return DefaultLessonType, false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MARKS
// ══════════════════════════════════════════════════════════════════════════════

// Grade bounds, inclusive.
const (
	GradeMin = 0
	GradeMax = 10
)

// Mark is what a grading command applies to an attendance row: either a
// participation flag ('+'/'-') or a numeric grade. Exactly one side is set.
type Mark struct {
	participation *bool
	grade         *int
}

// NewParticipationMark builds a participation mark.
func NewParticipationMark(value bool) Mark {
	return Mark{participation: &value}
}

// NewGradeMark builds a numeric-grade mark, rejecting out-of-range values.
// The range is enforced here as well as by the schema, so the core stays
// correct independent of caller discipline.
func NewGradeMark(grade int) (Mark, error) {
	if grade < GradeMin || grade > GradeMax {
		return Mark{}, ErrMarkOutOfRange
	}
	g := grade
	return Mark{grade: &g}, nil
}

// ParseMark parses a command token: "+", "-" or a decimal grade.
func ParseMark(token string) (Mark, error) {
	switch token {
	case "+":
		return NewParticipationMark(true), nil
	case "-":
		return NewParticipationMark(false), nil
	}
	grade, err := strconv.Atoi(token)
	if err != nil {
		return Mark{}, ErrUnknownMark
	}
	return NewGradeMark(grade)
}

// IsParticipation reports whether the mark carries a participation flag.
func (m Mark) IsParticipation() bool { return m.participation != nil }

// Participation returns the participation flag; valid only when
// IsParticipation is true.
func (m Mark) Participation() bool {
	return m.participation != nil && *m.participation
}

// Grade returns the numeric grade; valid only when IsParticipation is false.
func (m Mark) Grade() int {
	if m.grade == nil {
		return 0
	}
	return *m.grade
}

// Zero reports whether the mark is unset.
func (m Mark) Zero() bool { return m.participation == nil && m.grade == nil }

// ══════════════════════════════════════════════════════════════════════════════
// PERFORMANCE VALUES
// ══════════════════════════════════════════════════════════════════════════════

// PerformanceValue is one recorded outcome in a student's history: the
// participation flag or the numeric grade of a single attendance row,
// depending on which history was requested.
type PerformanceValue struct {
	// Participation is set when participation history was requested.
	Participation bool

	// Grade is set when grade history was requested; nil means the row was
	// never graded.
	Grade *int
}

// LessonDate normalizes a lesson date to midnight UTC, the granularity the
// schema stores.
func LessonDate(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
