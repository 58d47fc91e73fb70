// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The default path ":memory:" keeps the database inside the process, so
// this backend is as volatile as the memory one. Email uniqueness is a
// UNIQUE constraint; the pool is capped at one connection so every
// statement sees the same in-memory database and writes are serialized.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Storage.Path, creates the
// students table if it does not already exist, and returns a
// ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	// Schema:
	//   seq   — insertion order, never reused (AUTOINCREMENT)
	//   id    — UUID string handed out to clients
	//   email — unique across all rows, exact match
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			seq   INTEGER PRIMARY KEY AUTOINCREMENT,
			id    TEXT    NOT NULL UNIQUE,
			name  TEXT    NOT NULL,
			email TEXT    NOT NULL UNIQUE,
			age   INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying database.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// isDuplicateEmail reports whether err is the UNIQUE violation on the
// email column.
func isDuplicateEmail(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), "students.email")
}

func (s *SQLite) CreateStudent(name, email string, age int) (types.Student, error) {
	if err := storage.Check(name, age); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}

	u, err := uuid.NewRandom()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: generate id: %w", err)
	}
	student := types.Student{ID: u.String(), Name: name, Email: email, Age: age}

	_, err = s.Db.Exec(
		"INSERT INTO students (id, name, email, age) VALUES (?, ?, ?, ?)",
		student.ID, student.Name, student.Email, student.Age,
	)
	if err != nil {
		if isDuplicateEmail(err) {
			return types.Student{}, storage.ErrDuplicateEmail
		}
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	return student, nil
}

func (s *SQLite) GetStudentByID(id string) (types.Student, error) {
	var student types.Student

	err := s.Db.QueryRow(
		"SELECT id, name, email, age FROM students WHERE id = ? LIMIT 1", id,
	).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Age,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

func (s *SQLite) GetStudents() ([]types.Student, error) {
	rows, err := s.Db.Query("SELECT id, name, email, age FROM students ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Age,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces a student's data with the provided values.
// Zero affected rows means the ID does not exist.
func (s *SQLite) UpdateStudentByID(id string, student types.Student) (types.Student, error) {
	if err := storage.Check(student.Name, student.Age); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	result, err := s.Db.Exec(
		"UPDATE students SET name = ?, email = ?, age = ? WHERE id = ?",
		student.Name, student.Email, student.Age, id,
	)
	if err != nil {
		if isDuplicateEmail(err) {
			return types.Student{}, storage.ErrDuplicateEmail
		}
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.Student{}, storage.ErrNotFound
	}

	return types.Student{ID: id, Name: student.Name, Email: student.Email, Age: student.Age}, nil
}

func (s *SQLite) DeleteStudentByID(id string) error {
	result, err := s.Db.Exec("DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}
