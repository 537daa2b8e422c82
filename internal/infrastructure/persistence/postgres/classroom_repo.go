package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/classhub/assistant-bot/internal/domain/classroom"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASSROOM REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ClassroomRepository implements classroom.Repository for PostgreSQL. Every
// mutating operation runs in a single transaction acquired per call; reads
// are single consistent queries on the pool.
type ClassroomRepository struct {
	conn *Connection
}

// NewClassroomRepository creates a new ClassroomRepository.
func NewClassroomRepository(conn *Connection) *ClassroomRepository {
	return &ClassroomRepository{conn: conn}
}

var _ classroom.Repository = (*ClassroomRepository)(nil)

// querier is satisfied by both the pool-backed Connection and pgx.Tx, so the
// same lookup helpers serve reads and transactional code paths.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// membershipSubquery restricts users to those currently bound to the chat's
// course in any role. Removed students drop out of aggregated views even
// though their attendance rows persist.
const membershipSubquery = `
	SELECT uc.user_id
	FROM users_courses uc
	JOIN courses mc ON mc.id = uc.course_id
	WHERE mc.chat_id = $1
`

// ─────────────────────────────────────────────────────────────────────────────
// Course Resolution
// ─────────────────────────────────────────────────────────────────────────────

// GetCourse returns the course bound to the chat together with its resolved
// teacher and student membership.
func (r *ClassroomRepository) GetCourse(ctx context.Context, chatID string) (*classroom.CourseInfo, error) {
	return r.getCourse(ctx, r.conn, chatID)
}

// GetOrCreateCourse returns the existing course without mutation, or creates
// the course, resolves or creates the requesting user, and binds it as the
// teacher, committing atomically.
func (r *ClassroomRepository) GetOrCreateCourse(ctx context.Context, chatID string, requester classroom.UserInfo, title, group string) (bool, *classroom.CourseInfo, error) {
	var existed bool
	var info *classroom.CourseInfo

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		found, err := r.getCourse(ctx, tx, chatID)
		if err == nil {
			existed = true
			info = found
			return nil
		}
		if !classroom.IsNotFound(err) {
			return err
		}

		teacher, err := r.getUserByTgID(ctx, tx, requester.TgID)
		if err != nil {
			return err
		}
		if teacher == nil {
			teacher = classroom.NewUser(requester)
			if err := r.insertUser(ctx, tx, teacher); err != nil {
				return err
			}
		}

		course := classroom.NewCourse(chatID, title, group)
		_, err = tx.Exec(ctx, `
			INSERT INTO courses (id, chat_id, title, group_name, year, exam_weight, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, course.ID, course.ChatID, course.Title, course.Group, course.Year, course.ExamWeight, course.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create course: %w", err)
		}

		if err := r.insertMembership(ctx, tx, teacher.ID, course.ID, true); err != nil {
			return err
		}

		info = &classroom.CourseInfo{
			Course:   *course,
			Teachers: []classroom.User{*teacher},
			Students: []classroom.User{},
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}

	return existed, info, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Roster Management
// ─────────────────────────────────────────────────────────────────────────────

// AddStudent registers a student with the course. Re-registration refreshes
// username/name last-write-wins and is otherwise a no-op.
func (r *ClassroomRepository) AddStudent(ctx context.Context, chatID string, info classroom.UserInfo) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		courseInfo, err := r.getCourse(ctx, tx, chatID)
		if err != nil {
			return err
		}

		student, err := r.getUserByTgID(ctx, tx, info.TgID)
		if err != nil {
			return err
		}

		if student == nil {
			if !info.HasProfile() {
				return classroom.ErrMissingProfile
			}
			student = classroom.NewUser(info)
			if err := r.insertUser(ctx, tx, student); err != nil {
				return err
			}
		} else {
			if _, isTeacher := courseInfo.TeacherTgIDs()[student.TgID]; isTeacher {
				return classroom.ErrTeacherAsStudent
			}
			_, err := tx.Exec(ctx, `
				UPDATE users SET username = NULLIF($1, ''), name = NULLIF($2, ''), updated_at = $3
				WHERE id = $4
			`, info.Username, info.Name, time.Now().UTC(), student.ID)
			if err != nil {
				return fmt.Errorf("failed to refresh student profile: %w", err)
			}
		}

		if _, bound := courseInfo.StudentTgIDs()[student.TgID]; !bound {
			return r.insertMembership(ctx, tx, student.ID, courseInfo.Course.ID, false)
		}
		return nil
	})
}

// RemoveStudent deletes the student-role membership only; the user row and
// its attendance history persist.
func (r *ClassroomRepository) RemoveStudent(ctx context.Context, chatID, username string) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		var userID string
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&userID)
		if IsNoRows(err) {
			return classroom.ErrStudentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to resolve student by username: %w", err)
		}

		courseInfo, err := r.getCourse(ctx, tx, chatID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			DELETE FROM users_courses
			WHERE user_id = $1 AND course_id = $2 AND teacher = FALSE
		`, userID, courseInfo.Course.ID)
		if err != nil {
			return fmt.Errorf("failed to remove student membership: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return classroom.ErrNotCourseStudent
		}
		return nil
	})
}

// IsTeacher reports whether the tg identity holds the teacher membership of
// the chat's course.
func (r *ClassroomRepository) IsTeacher(ctx context.Context, chatID string, tgID int64) (bool, error) {
	courseInfo, err := r.getCourse(ctx, r.conn, chatID)
	if err != nil {
		return false, err
	}

	_, ok := courseInfo.TeacherTgIDs()[tgID]
	return ok, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Lesson Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// StartLesson appends a lesson to the course. Titles are not deduplicated.
func (r *ClassroomRepository) StartLesson(ctx context.Context, chatID, title string, lessonType classroom.LessonType, date time.Time) (*classroom.Lesson, error) {
	var lesson *classroom.Lesson

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		courseInfo, err := r.getCourse(ctx, tx, chatID)
		if err != nil {
			return err
		}

		if !lessonType.Valid() {
			lessonType = classroom.DefaultLessonType
		}

		lesson = &classroom.Lesson{
			CourseID: courseInfo.Course.ID,
			Title:    title,
			Type:     lessonType,
			Date:     classroom.LessonDate(date),
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO lessons (course_id, title, lesson_type, lesson_date)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, lesson.CourseID, lesson.Title, int(lesson.Type), lesson.Date).Scan(&lesson.ID, &lesson.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create lesson: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lesson, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Attendance & Grading
// ─────────────────────────────────────────────────────────────────────────────

// MarkPresent creates one attendance row per eligible candidate for the
// current lesson and returns the skip list. All rows commit as one
// transaction.
func (r *ClassroomRepository) MarkPresent(ctx context.Context, chatID string, candidates []string) ([]string, error) {
	skipped := []string{}

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		courseInfo, err := r.getCourse(ctx, tx, chatID)
		if err != nil {
			return err
		}

		lessonID, err := r.currentLessonID(ctx, tx, courseInfo.Course.ID)
		if err != nil {
			return err
		}

		presented, err := r.presentedSet(ctx, tx, chatID, lessonID)
		if err != nil {
			return err
		}

		eligible, skip := classroom.SplitPresentable(candidates, courseInfo.StudentsByUsername(), presented)
		skipped = append(skipped, skip...)

		for _, student := range eligible {
			_, err := tx.Exec(ctx, `
				INSERT INTO attendances (user_id, lesson_id)
				VALUES ($1, $2)
			`, student.ID, lessonID)
			if err != nil {
				return fmt.Errorf("failed to create attendance row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return skipped, nil
}

// GradeStudents applies the mark to existing attendance rows of the current
// lesson in one query per direction: one lookup, one update.
func (r *ClassroomRepository) GradeStudents(ctx context.Context, chatID string, candidates []string, mark classroom.Mark) ([]string, error) {
	if mark.Zero() {
		return nil, classroom.ErrUnknownMark
	}

	skipped := []string{}

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		courseInfo, err := r.getCourse(ctx, tx, chatID)
		if err != nil {
			return err
		}

		lessonID, err := r.currentLessonID(ctx, tx, courseInfo.Course.ID)
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT COALESCE(u.username, ''), a.id
			FROM attendances a
			JOIN users u ON u.id = a.user_id
			JOIN users_courses uc ON uc.user_id = u.id
			WHERE a.lesson_id = $1
			  AND uc.course_id = $2
			  AND u.username = ANY($3)
		`, lessonID, courseInfo.Course.ID, candidates)
		if err != nil {
			return fmt.Errorf("failed to look up attendance rows: %w", err)
		}
		defer rows.Close()

		attendanceByUsername := make(map[string]int64, len(candidates))
		for rows.Next() {
			var username string
			var attendanceID int64
			if err := rows.Scan(&username, &attendanceID); err != nil {
				return fmt.Errorf("failed to scan attendance row: %w", err)
			}
			attendanceByUsername[username] = attendanceID
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows iteration error: %w", err)
		}

		attendanceIDs, skip := classroom.SplitGradable(candidates, attendanceByUsername)
		skipped = append(skipped, skip...)

		if len(attendanceIDs) == 0 {
			return nil
		}

		if mark.IsParticipation() {
			_, err = tx.Exec(ctx, `
				UPDATE attendances SET participation = $1 WHERE id = ANY($2)
			`, mark.Participation(), attendanceIDs)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE attendances SET grade = $1 WHERE id = ANY($2)
			`, mark.Grade(), attendanceIDs)
		}
		if err != nil {
			return fmt.Errorf("failed to apply mark: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return skipped, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation Queries
// ─────────────────────────────────────────────────────────────────────────────

// GetAttendance returns username -> lifetime attendance count across all
// lessons of the course, restricted to current members.
func (r *ClassroomRepository) GetAttendance(ctx context.Context, chatID string) (map[string]int, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT COALESCE(u.username, ''), COUNT(a.id)
		FROM users u
		JOIN attendances a ON a.user_id = u.id
		JOIN lessons l ON l.id = a.lesson_id
		JOIN courses c ON c.id = l.course_id
		WHERE c.chat_id = $1
		  AND u.id IN (`+membershipSubquery+`)
		GROUP BY u.username
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var username string
		var count int
		if err := rows.Scan(&username, &count); err != nil {
			return nil, fmt.Errorf("failed to scan attendance count: %w", err)
		}
		counts[username] = count
	}

	return counts, rows.Err()
}

// GetPerformance returns username -> ordered history of grades or
// participation flags, in attendance-row creation order.
func (r *ClassroomRepository) GetPerformance(ctx context.Context, chatID string, fetchGrades bool) (map[string][]classroom.PerformanceValue, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT COALESCE(u.username, ''), a.grade, a.participation
		FROM users u
		JOIN attendances a ON a.user_id = u.id
		JOIN lessons l ON l.id = a.lesson_id
		JOIN courses c ON c.id = l.course_id
		WHERE c.chat_id = $1
		  AND u.id IN (`+membershipSubquery+`)
		ORDER BY a.id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance: %w", err)
	}
	defer rows.Close()

	performance := make(map[string][]classroom.PerformanceValue)
	for rows.Next() {
		var username string
		var grade *int
		var participation bool
		if err := rows.Scan(&username, &grade, &participation); err != nil {
			return nil, fmt.Errorf("failed to scan performance row: %w", err)
		}

		var value classroom.PerformanceValue
		if fetchGrades {
			value.Grade = grade
		} else {
			value.Participation = participation
		}
		performance[username] = append(performance[username], value)
	}

	return performance, rows.Err()
}

// GetPresented returns the usernames marked present for the current lesson.
func (r *ClassroomRepository) GetPresented(ctx context.Context, chatID string) ([]string, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT COALESCE(u.username, '')
		FROM users u
		JOIN attendances a ON a.user_id = u.id
		JOIN lessons l ON l.id = a.lesson_id
		JOIN courses c ON c.id = l.course_id
		WHERE c.chat_id = $1
		  AND l.id = (
			SELECT MAX(l2.id)
			FROM lessons l2
			JOIN courses c2 ON c2.id = l2.course_id
			WHERE c2.chat_id = $1
		  )
		  AND u.id IN (`+membershipSubquery+`)
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query presented students: %w", err)
	}
	defer rows.Close()

	var presented []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan presented username: %w", err)
		}
		presented = append(presented, username)
	}

	return presented, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookup Helpers
// ─────────────────────────────────────────────────────────────────────────────

// getCourse resolves the course and its membership through q, so it serves
// both pool reads and transactional paths without opening its own
// transaction.
func (r *ClassroomRepository) getCourse(ctx context.Context, q querier, chatID string) (*classroom.CourseInfo, error) {
	var course classroom.Course
	err := q.QueryRow(ctx, `
		SELECT id, chat_id, title, group_name, year, exam_weight, created_at
		FROM courses
		WHERE chat_id = $1
	`, chatID).Scan(&course.ID, &course.ChatID, &course.Title, &course.Group, &course.Year, &course.ExamWeight, &course.CreatedAt)
	if IsNoRows(err) {
		return nil, classroom.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT u.id, u.tg_id, COALESCE(u.username, ''), COALESCE(u.name, ''), u.created_at, u.updated_at, uc.teacher
		FROM users_courses uc
		JOIN users u ON u.id = uc.user_id
		WHERE uc.course_id = $1
		ORDER BY uc.created_at
	`, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course membership: %w", err)
	}
	defer rows.Close()

	info := &classroom.CourseInfo{
		Course:   course,
		Teachers: []classroom.User{},
		Students: []classroom.User{},
	}

	for rows.Next() {
		var u classroom.User
		var teacher bool
		if err := rows.Scan(&u.ID, &u.TgID, &u.Username, &u.Name, &u.CreatedAt, &u.UpdatedAt, &teacher); err != nil {
			return nil, fmt.Errorf("failed to scan course member: %w", err)
		}
		if teacher {
			info.Teachers = append(info.Teachers, u)
		} else {
			info.Students = append(info.Students, u)
		}
	}

	return info, rows.Err()
}

// getUserByTgID returns the user with the external identity or nil.
func (r *ClassroomRepository) getUserByTgID(ctx context.Context, q querier, tgID int64) (*classroom.User, error) {
	var u classroom.User
	err := q.QueryRow(ctx, `
		SELECT id, tg_id, COALESCE(username, ''), COALESCE(name, ''), created_at, updated_at
		FROM users
		WHERE tg_id = $1
	`, tgID).Scan(&u.ID, &u.TgID, &u.Username, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *ClassroomRepository) insertUser(ctx context.Context, q querier, u *classroom.User) error {
	_, err := q.Exec(ctx, `
		INSERT INTO users (id, tg_id, username, name, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
	`, u.ID, u.TgID, u.Username, u.Name, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *ClassroomRepository) insertMembership(ctx context.Context, q querier, userID, courseID string, teacher bool) error {
	_, err := q.Exec(ctx, `
		INSERT INTO users_courses (user_id, course_id, teacher)
		VALUES ($1, $2, $3)
	`, userID, courseID, teacher)
	if err != nil {
		return fmt.Errorf("failed to create course membership: %w", err)
	}
	return nil
}

// currentLessonID resolves the current lesson strictly by insertion order
// (highest id), never by date: a past lesson logged late must not become
// current.
func (r *ClassroomRepository) currentLessonID(ctx context.Context, q querier, courseID string) (int64, error) {
	var lessonID *int64
	err := q.QueryRow(ctx, `
		SELECT MAX(id) FROM lessons WHERE course_id = $1
	`, courseID).Scan(&lessonID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current lesson: %w", err)
	}
	if lessonID == nil {
		return 0, classroom.ErrLessonNotFound
	}
	return *lessonID, nil
}

// presentedSet returns the usernames already marked present for the lesson.
func (r *ClassroomRepository) presentedSet(ctx context.Context, q querier, chatID string, lessonID int64) (map[string]struct{}, error) {
	rows, err := q.Query(ctx, `
		SELECT COALESCE(u.username, '')
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.lesson_id = $2
		  AND u.id IN (`+membershipSubquery+`)
	`, chatID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query presented set: %w", err)
	}
	defer rows.Close()

	presented := make(map[string]struct{})
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan presented username: %w", err)
		}
		presented[username] = struct{}{}
	}

	return presented, rows.Err()
}
