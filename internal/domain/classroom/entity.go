// Package classroom contains the domain model of the attendance tracker:
// users, the single course bound to a chat, its lessons, attendance records,
// and the teacher/student membership between users and the course.
// This package has zero external infrastructure dependencies.
package classroom

import (
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// DefaultExamWeight is the exam weight (in percent) a course starts with.
const DefaultExamWeight = 40

// User is a chat participant known to the tracker. Users are created lazily
// on first registration and are never hard-deleted; removing a student only
// severs the course membership.
type User struct {
	// ID is the internal identifier (UUID).
	ID string

	// TgID is the external chat-platform identity, unique across users.
	TgID int64

	// Username is the addressing key teacher commands use ("@name" with the
	// marker already stripped by the adapter). Unique; may be empty for a
	// user that registered without one.
	Username string

	// Name is the display name.
	Name string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserInfo is the identity the adapter resolves from an incoming message.
type UserInfo struct {
	TgID     int64  `validate:"required"`
	Username string
	Name     string
}

// NewUser creates a User from adapter-provided identity.
func NewUser(info UserInfo) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.NewString(),
		TgID:      info.TgID,
		Username:  info.Username,
		Name:      info.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasProfile reports whether the identity carries the display fields required
// to create a new student row.
func (i UserInfo) HasProfile() bool {
	return i.Username != "" && i.Name != ""
}

// Course is the single tracked class bound to one chat identity.
type Course struct {
	// ID is the internal identifier (UUID).
	ID string

	// ChatID is the external chat identity, unique across courses.
	ChatID string

	Title string
	Group string
	Year  int

	// ExamWeight is the exam weight in percent.
	ExamWeight int

	CreatedAt time.Time
}

// NewCourse creates a Course for a chat identity.
func NewCourse(chatID, title, group string) *Course {
	now := time.Now().UTC()
	return &Course{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Title:      title,
		Group:      group,
		Year:       now.Year(),
		ExamWeight: DefaultExamWeight,
		CreatedAt:  now,
	}
}

// Lesson is one dated session of a course. Lessons are append-only; the
// "current lesson" of a course is the one with the highest ID, which is
// strictly creation order. It is not the most recent date: a past lesson can
// be logged after a later one was already created.
type Lesson struct {
	// ID grows monotonically with insertion order.
	ID int64

	CourseID string
	Title    string
	Type     LessonType
	Date     time.Time

	CreatedAt time.Time
}

// Attendance records that a user was present at a lesson, with an optional
// numeric grade and a participation flag. At most one row exists per
// (user, lesson) pair.
type Attendance struct {
	ID       int64
	UserID   string
	LessonID int64

	// Grade is nil until the student is graded for the lesson.
	Grade *int

	// Participation is the '+'/'-' bonus flag, false until set.
	Participation bool

	CreatedAt time.Time
}

// CourseMember is the join record between a user and the course, carrying the
// role flag. A (user, course) pair has at most one membership; a user is
// either the teacher or a student of a course, never both.
type CourseMember struct {
	UserID   string
	CourseID string
	Teacher  bool

	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE INFO
// ══════════════════════════════════════════════════════════════════════════════

// CourseInfo is a course together with its resolved membership, the unit all
// course-scoped operations work from.
type CourseInfo struct {
	Course   Course
	Teachers []User
	Students []User
}

// StudentsByUsername indexes students by their addressing key. Students
// without a username are unreachable by batch commands and are omitted.
func (ci *CourseInfo) StudentsByUsername() map[string]User {
	byUsername := make(map[string]User, len(ci.Students))
	for _, st := range ci.Students {
		if st.Username != "" {
			byUsername[st.Username] = st
		}
	}
	return byUsername
}

// TeacherTgIDs returns the set of teacher chat-platform identities.
func (ci *CourseInfo) TeacherTgIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(ci.Teachers))
	for _, t := range ci.Teachers {
		ids[t.TgID] = struct{}{}
	}
	return ids
}

// StudentTgIDs returns the set of student chat-platform identities.
func (ci *CourseInfo) StudentTgIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(ci.Students))
	for _, st := range ci.Students {
		ids[st.TgID] = struct{}{}
	}
	return ids
}

// ══════════════════════════════════════════════════════════════════════════════
// BATCH CANDIDATE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// DedupCandidates removes duplicate usernames while preserving first-seen
// order, so skip lists come back in the order the teacher typed them.
func DedupCandidates(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// SplitPresentable partitions presence-marking candidates into the students
// that can be marked and the skip list. A candidate is skipped when it is not
// a known student of the course or is already marked present for the current
// lesson; the two cases are deliberately not distinguished.
func SplitPresentable(candidates []string, students map[string]User, presented map[string]struct{}) (eligible []User, skipped []string) {
	for _, candidate := range candidates {
		student, known := students[candidate]
		_, already := presented[candidate]
		if known && !already {
			eligible = append(eligible, student)
		} else {
			skipped = append(skipped, candidate)
		}
	}
	return eligible, skipped
}

// SplitGradable partitions grading candidates into attendance row IDs to
// update and the skip list of candidates never marked present for the
// current lesson.
func SplitGradable(candidates []string, attendanceByUsername map[string]int64) (attendanceIDs []int64, skipped []string) {
	for _, candidate := range candidates {
		if id, ok := attendanceByUsername[candidate]; ok {
			attendanceIDs = append(attendanceIDs, id)
		} else {
			skipped = append(skipped, candidate)
		}
	}
	return attendanceIDs, skipped
}
