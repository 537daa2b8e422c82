package classroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u := NewUser(UserInfo{TgID: 42, Username: "alice", Name: "Alice A."})
	require.NotEmpty(t, u.ID)
	assert.Equal(t, int64(42), u.TgID)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.CreatedAt.IsZero())

	other := NewUser(UserInfo{TgID: 43})
	assert.NotEqual(t, u.ID, other.ID)
}

func TestUserInfo_HasProfile(t *testing.T) {
	assert.True(t, UserInfo{TgID: 1, Username: "bob", Name: "Bob"}.HasProfile())
	assert.False(t, UserInfo{TgID: 1, Username: "bob"}.HasProfile())
	assert.False(t, UserInfo{TgID: 1, Name: "Bob"}.HasProfile())
	assert.False(t, UserInfo{TgID: 1}.HasProfile())
}

func TestNewCourse(t *testing.T) {
	c := NewCourse("chat-1", "Databases", "CS-201")
	require.NotEmpty(t, c.ID)
	assert.Equal(t, "chat-1", c.ChatID)
	assert.Equal(t, DefaultExamWeight, c.ExamWeight)
	assert.Equal(t, c.CreatedAt.Year(), c.Year)
}

func TestCourseInfo_StudentsByUsername(t *testing.T) {
	info := &CourseInfo{
		Students: []User{
			{ID: "a", TgID: 1, Username: "alice"},
			{ID: "b", TgID: 2, Username: ""},
			{ID: "c", TgID: 3, Username: "carol"},
		},
	}

	byUsername := info.StudentsByUsername()
	assert.Len(t, byUsername, 2)
	assert.Equal(t, "a", byUsername["alice"].ID)
	assert.Equal(t, "c", byUsername["carol"].ID)
}

func TestCourseInfo_TgIDSets(t *testing.T) {
	info := &CourseInfo{
		Teachers: []User{{TgID: 100}},
		Students: []User{{TgID: 1}, {TgID: 2}},
	}

	assert.Contains(t, info.TeacherTgIDs(), int64(100))
	assert.Len(t, info.StudentTgIDs(), 2)
	assert.NotContains(t, info.StudentTgIDs(), int64(100))
}

func TestDedupCandidates(t *testing.T) {
	out := DedupCandidates([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, out)

	assert.Empty(t, DedupCandidates(nil))
}

func TestSplitPresentable(t *testing.T) {
	students := map[string]User{
		"alice": {ID: "a", Username: "alice"},
		"bob":   {ID: "b", Username: "bob"},
	}
	presented := map[string]struct{}{"bob": {}}

	eligible, skipped := SplitPresentable([]string{"alice", "bob", "ghost"}, students, presented)
	require.Len(t, eligible, 1)
	assert.Equal(t, "alice", eligible[0].Username)
	assert.Equal(t, []string{"bob", "ghost"}, skipped)
}

func TestSplitGradable(t *testing.T) {
	rows := map[string]int64{"alice": 10, "bob": 11}

	ids, skipped := SplitGradable([]string{"bob", "ghost", "alice"}, rows)
	assert.Equal(t, []int64{11, 10}, ids)
	assert.Equal(t, []string{"ghost"}, skipped)
}
