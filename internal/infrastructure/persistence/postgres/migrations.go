package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CLASSROOM SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create classroom schema
-- Version: 001

-- Chat participants. Created lazily on first registration, never hard-deleted.
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    tg_id BIGINT NOT NULL UNIQUE,
    username VARCHAR(64) UNIQUE,
    name VARCHAR(128),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_tg_id ON users(tg_id);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username) WHERE username IS NOT NULL;

-- One course per chat identity.
CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY,
    chat_id VARCHAR(64) NOT NULL UNIQUE,
    title VARCHAR(128) NOT NULL,
    group_name VARCHAR(64) NOT NULL,
    year INTEGER NOT NULL,
    -- exam weight in percent
    exam_weight INTEGER NOT NULL DEFAULT 40,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT uq_courses_title_year_group UNIQUE (title, year, group_name),
    CONSTRAINT valid_exam_weight CHECK (exam_weight >= 0 AND exam_weight <= 100)
);

CREATE INDEX IF NOT EXISTS idx_courses_chat_id ON courses(chat_id);

-- Teacher/student membership between a user and the course. The only table
-- rows are ever hard-deleted from (removing a student).
CREATE TABLE IF NOT EXISTS users_courses (
    user_id UUID NOT NULL REFERENCES users(id),
    course_id UUID NOT NULL REFERENCES courses(id),
    teacher BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_users_courses_course_id ON users_courses(course_id);

-- Lessons are append-only; the current lesson of a course is MAX(id), which
-- is insertion order, not date order.
CREATE TABLE IF NOT EXISTS lessons (
    id BIGSERIAL PRIMARY KEY,
    course_id UUID NOT NULL REFERENCES courses(id),
    title VARCHAR(128) NOT NULL,
    -- 0-lecture 1-lab 2-seminar
    lesson_type SMALLINT NOT NULL DEFAULT 1,
    lesson_date DATE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_lesson_type CHECK (lesson_type IN (0, 1, 2))
);

CREATE INDEX IF NOT EXISTS idx_lessons_course_id ON lessons(course_id, id DESC);

-- One row per (user, lesson) presence-marking event.
CREATE TABLE IF NOT EXISTS attendances (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    lesson_id BIGINT NOT NULL REFERENCES lessons(id),
    grade SMALLINT,
    participation BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT uq_attendances_user_lesson UNIQUE (user_id, lesson_id),
    CONSTRAINT valid_grade CHECK (grade IS NULL OR (grade >= 0 AND grade <= 10))
);

CREATE INDEX IF NOT EXISTS idx_attendances_lesson_id ON attendances(lesson_id);
CREATE INDEX IF NOT EXISTS idx_attendances_user_id ON attendances(user_id);
`

const migration001Down = `
DROP TABLE IF EXISTS attendances;
DROP TABLE IF EXISTS lessons;
DROP TABLE IF EXISTS users_courses;
DROP TABLE IF EXISTS courses;
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_classroom_schema",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
	}
}
