package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
)

// fakeRepo is a hand-rolled classroom.Repository double. Each method records
// its call and delegates to an optional stub.
type fakeRepo struct {
	getOrCreateFn func(chatID string, requester classroom.UserInfo, title, group string) (bool, *classroom.CourseInfo, error)
	addStudentFn  func(chatID string, info classroom.UserInfo) error
	removeFn      func(chatID, username string) error
	startLessonFn func(chatID, title string, lt classroom.LessonType, date time.Time) (*classroom.Lesson, error)
	markPresentFn func(chatID string, candidates []string) ([]string, error)
	gradeFn       func(chatID string, candidates []string, mark classroom.Mark) ([]string, error)

	markPresentCandidates []string
	gradeCandidates       []string
	gradeMark             classroom.Mark
}

func (f *fakeRepo) GetCourse(ctx context.Context, chatID string) (*classroom.CourseInfo, error) {
	return nil, classroom.ErrCourseNotFound
}

func (f *fakeRepo) GetOrCreateCourse(ctx context.Context, chatID string, requester classroom.UserInfo, title, group string) (bool, *classroom.CourseInfo, error) {
	return f.getOrCreateFn(chatID, requester, title, group)
}

func (f *fakeRepo) AddStudent(ctx context.Context, chatID string, info classroom.UserInfo) error {
	return f.addStudentFn(chatID, info)
}

func (f *fakeRepo) RemoveStudent(ctx context.Context, chatID, username string) error {
	return f.removeFn(chatID, username)
}

func (f *fakeRepo) IsTeacher(ctx context.Context, chatID string, tgID int64) (bool, error) {
	return false, nil
}

func (f *fakeRepo) StartLesson(ctx context.Context, chatID, title string, lt classroom.LessonType, date time.Time) (*classroom.Lesson, error) {
	return f.startLessonFn(chatID, title, lt, date)
}

func (f *fakeRepo) MarkPresent(ctx context.Context, chatID string, candidates []string) ([]string, error) {
	f.markPresentCandidates = candidates
	return f.markPresentFn(chatID, candidates)
}

func (f *fakeRepo) GradeStudents(ctx context.Context, chatID string, candidates []string, mark classroom.Mark) ([]string, error) {
	f.gradeCandidates = candidates
	f.gradeMark = mark
	return f.gradeFn(chatID, candidates, mark)
}

func (f *fakeRepo) GetAttendance(ctx context.Context, chatID string) (map[string]int, error) {
	return nil, nil
}

func (f *fakeRepo) GetPerformance(ctx context.Context, chatID string, fetchGrades bool) (map[string][]classroom.PerformanceValue, error) {
	return nil, nil
}

func (f *fakeRepo) GetPresented(ctx context.Context, chatID string) ([]string, error) {
	return nil, nil
}

// fakeCache records invalidations.
type fakeCache struct {
	invalidated []string
	failWith    error
}

func (f *fakeCache) Get(ctx context.Context, chatID string) (map[string]int, error) {
	return nil, classroom.ErrCacheMiss
}

func (f *fakeCache) Set(ctx context.Context, chatID string, counts map[string]int) error {
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, chatID string) error {
	f.invalidated = append(f.invalidated, chatID)
	return f.failWith
}

func TestCreateCourseHandler(t *testing.T) {
	repo := &fakeRepo{
		getOrCreateFn: func(chatID string, requester classroom.UserInfo, title, group string) (bool, *classroom.CourseInfo, error) {
			return false, &classroom.CourseInfo{
				Course:   classroom.Course{ChatID: chatID, Title: title, Group: group},
				Teachers: []classroom.User{{TgID: requester.TgID}},
			}, nil
		},
	}
	h := NewCreateCourseHandler(repo, nil)

	res, err := h.Handle(context.Background(), CreateCourseCommand{
		ChatID:    "chat-1",
		Requester: classroom.UserInfo{TgID: 100, Username: "prof", Name: "Prof"},
		Title:     "Databases",
		Group:     "CS-201",
	})
	require.NoError(t, err)
	assert.False(t, res.AlreadyExisted)
	assert.Equal(t, "Databases", res.Info.Course.Title)
}

func TestCreateCourseHandler_AlreadyExists(t *testing.T) {
	repo := &fakeRepo{
		getOrCreateFn: func(chatID string, _ classroom.UserInfo, _, _ string) (bool, *classroom.CourseInfo, error) {
			return true, &classroom.CourseInfo{Course: classroom.Course{ChatID: chatID, Title: "Old"}}, nil
		},
	}
	h := NewCreateCourseHandler(repo, nil)

	res, err := h.Handle(context.Background(), CreateCourseCommand{
		ChatID:    "chat-1",
		Requester: classroom.UserInfo{TgID: 100},
		Title:     "New",
		Group:     "G",
	})
	require.NoError(t, err)
	assert.True(t, res.AlreadyExisted)
	assert.Equal(t, "Old", res.Info.Course.Title)
}

func TestCreateCourseHandler_Validation(t *testing.T) {
	h := NewCreateCourseHandler(&fakeRepo{}, nil)

	_, err := h.Handle(context.Background(), CreateCourseCommand{ChatID: "chat-1", Title: "T", Group: "G"})
	assert.Error(t, err, "missing requester tg id")

	_, err = h.Handle(context.Background(), CreateCourseCommand{
		Requester: classroom.UserInfo{TgID: 1}, Title: "T", Group: "G",
	})
	assert.Error(t, err, "missing chat id")
}

func TestRegisterStudentHandler_InvalidatesCache(t *testing.T) {
	repo := &fakeRepo{
		addStudentFn: func(chatID string, info classroom.UserInfo) error { return nil },
	}
	cache := &fakeCache{}
	h := NewRegisterStudentHandler(repo, cache, nil)

	err := h.Handle(context.Background(), RegisterStudentCommand{
		ChatID:  "chat-1",
		Student: classroom.UserInfo{TgID: 5, Username: "alice", Name: "Alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chat-1"}, cache.invalidated)
}

func TestRegisterStudentHandler_TeacherRejected(t *testing.T) {
	repo := &fakeRepo{
		addStudentFn: func(chatID string, info classroom.UserInfo) error {
			return classroom.ErrTeacherAsStudent
		},
	}
	cache := &fakeCache{}
	h := NewRegisterStudentHandler(repo, cache, nil)

	err := h.Handle(context.Background(), RegisterStudentCommand{
		ChatID:  "chat-1",
		Student: classroom.UserInfo{TgID: 100},
	})
	assert.ErrorIs(t, err, classroom.ErrTeacherAsStudent)
	assert.Empty(t, cache.invalidated, "failed registration must not touch the cache")
}

func TestRegisterStudentHandler_CacheFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{
		addStudentFn: func(chatID string, info classroom.UserInfo) error { return nil },
	}
	cache := &fakeCache{failWith: errors.New("redis down")}
	h := NewRegisterStudentHandler(repo, cache, nil)

	err := h.Handle(context.Background(), RegisterStudentCommand{
		ChatID:  "chat-1",
		Student: classroom.UserInfo{TgID: 5},
	})
	assert.NoError(t, err)
}

func TestRegisterStudentHandler_NilCache(t *testing.T) {
	repo := &fakeRepo{
		addStudentFn: func(chatID string, info classroom.UserInfo) error { return nil },
	}
	h := NewRegisterStudentHandler(repo, nil, nil)

	err := h.Handle(context.Background(), RegisterStudentCommand{
		ChatID:  "chat-1",
		Student: classroom.UserInfo{TgID: 5},
	})
	assert.NoError(t, err)
}

func TestRemoveStudentHandler(t *testing.T) {
	var removed string
	repo := &fakeRepo{
		removeFn: func(chatID, username string) error {
			removed = username
			return nil
		},
	}
	cache := &fakeCache{}
	h := NewRemoveStudentHandler(repo, cache, nil)

	err := h.Handle(context.Background(), RemoveStudentCommand{ChatID: "chat-1", Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", removed)
	assert.Equal(t, []string{"chat-1"}, cache.invalidated)
}

func TestRemoveStudentHandler_NotAStudent(t *testing.T) {
	repo := &fakeRepo{
		removeFn: func(chatID, username string) error { return classroom.ErrNotCourseStudent },
	}
	cache := &fakeCache{}
	h := NewRemoveStudentHandler(repo, cache, nil)

	err := h.Handle(context.Background(), RemoveStudentCommand{ChatID: "chat-1", Username: "prof"})
	assert.ErrorIs(t, err, classroom.ErrNotCourseStudent)
	assert.Empty(t, cache.invalidated)
}

func TestStartLessonHandler_Defaults(t *testing.T) {
	var gotType classroom.LessonType
	var gotDate time.Time
	repo := &fakeRepo{
		startLessonFn: func(chatID, title string, lt classroom.LessonType, date time.Time) (*classroom.Lesson, error) {
			gotType = lt
			gotDate = date
			return &classroom.Lesson{ID: 1, Title: title, Type: lt, Date: date}, nil
		},
	}
	h := NewStartLessonHandler(repo, nil)

	lesson, err := h.Handle(context.Background(), StartLessonCommand{ChatID: "chat-1", Title: "Joins"})
	require.NoError(t, err)
	assert.Equal(t, classroom.LessonLab, gotType)
	assert.True(t, gotDate.IsZero(), "zero date is resolved by the store")
	assert.Equal(t, int64(1), lesson.ID)
}

func TestStartLessonHandler_ExplicitType(t *testing.T) {
	repo := &fakeRepo{
		startLessonFn: func(chatID, title string, lt classroom.LessonType, date time.Time) (*classroom.Lesson, error) {
			return &classroom.Lesson{ID: 2, Type: lt}, nil
		},
	}
	h := NewStartLessonHandler(repo, nil)

	lesson, err := h.Handle(context.Background(), StartLessonCommand{ChatID: "chat-1", Title: "Intro", Type: "lecture"})
	require.NoError(t, err)
	assert.Equal(t, classroom.LessonLecture, lesson.Type)

	_, err = h.Handle(context.Background(), StartLessonCommand{ChatID: "chat-1", Title: "Intro", Type: "exam"})
	assert.Error(t, err)
}

func TestMarkPresentHandler_DedupesAndCounts(t *testing.T) {
	repo := &fakeRepo{
		markPresentFn: func(chatID string, candidates []string) ([]string, error) {
			return []string{"ghost"}, nil
		},
	}
	cache := &fakeCache{}
	h := NewMarkPresentHandler(repo, cache, nil)

	res, err := h.Handle(context.Background(), MarkPresentCommand{
		ChatID:    "chat-1",
		Usernames: []string{"alice", "bob", "alice", "ghost"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "ghost"}, repo.markPresentCandidates)
	assert.Equal(t, 2, res.Marked)
	assert.Equal(t, []string{"ghost"}, res.Skipped)
	assert.Equal(t, []string{"chat-1"}, cache.invalidated)
}

func TestMarkPresentHandler_NoLessonYet(t *testing.T) {
	repo := &fakeRepo{
		markPresentFn: func(chatID string, candidates []string) ([]string, error) {
			return nil, classroom.ErrLessonNotFound
		},
	}
	cache := &fakeCache{}
	h := NewMarkPresentHandler(repo, cache, nil)

	_, err := h.Handle(context.Background(), MarkPresentCommand{ChatID: "chat-1", Usernames: []string{"alice"}})
	assert.ErrorIs(t, err, classroom.ErrLessonNotFound)
	assert.Empty(t, cache.invalidated)
}

func TestGradeStudentsHandler_ParsesMark(t *testing.T) {
	repo := &fakeRepo{
		gradeFn: func(chatID string, candidates []string, mark classroom.Mark) ([]string, error) {
			return nil, nil
		},
	}
	h := NewGradeStudentsHandler(repo, nil)

	res, err := h.Handle(context.Background(), GradeStudentsCommand{
		ChatID:    "chat-1",
		Usernames: []string{"alice", "bob"},
		Mark:      "8",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Graded)
	assert.False(t, repo.gradeMark.IsParticipation())
	assert.Equal(t, 8, repo.gradeMark.Grade())
}

func TestGradeStudentsHandler_Participation(t *testing.T) {
	repo := &fakeRepo{
		gradeFn: func(chatID string, candidates []string, mark classroom.Mark) ([]string, error) {
			return []string{"bob"}, nil
		},
	}
	h := NewGradeStudentsHandler(repo, nil)

	res, err := h.Handle(context.Background(), GradeStudentsCommand{
		ChatID:    "chat-1",
		Usernames: []string{"alice", "bob"},
		Mark:      "+",
	})
	require.NoError(t, err)
	assert.True(t, repo.gradeMark.IsParticipation())
	assert.True(t, repo.gradeMark.Participation())
	assert.Equal(t, 1, res.Graded)
	assert.Equal(t, []string{"bob"}, res.Skipped)
}

func TestGradeStudentsHandler_BadMark(t *testing.T) {
	h := NewGradeStudentsHandler(&fakeRepo{}, nil)

	_, err := h.Handle(context.Background(), GradeStudentsCommand{
		ChatID:    "chat-1",
		Usernames: []string{"alice"},
		Mark:      "eleven",
	})
	assert.ErrorIs(t, err, classroom.ErrUnknownMark)

	_, err = h.Handle(context.Background(), GradeStudentsCommand{
		ChatID:    "chat-1",
		Usernames: []string{"alice"},
		Mark:      "11",
	})
	assert.ErrorIs(t, err, classroom.ErrMarkOutOfRange)
}
