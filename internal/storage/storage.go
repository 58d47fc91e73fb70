// Package storage defines the Storage interface — a contract that any
// record store backend must satisfy to work with this application.
//
// Handlers (HTTP layer) should not know or care which backend they are
// talking to. Two implementations exist: memory (the default, a guarded
// map) and sqlite. Both pass the shared suite in storage/storagetest.
package storage

import (
	"errors"
	"fmt"

	"github.com/aanand-mishra/students-api/internal/types"
)

// Errors returned by every Storage implementation. Callers match them
// with errors.Is.
var (
	// ErrNotFound is returned when no student has the requested ID.
	ErrNotFound = errors.New("student not found")

	// ErrDuplicateEmail is returned when a create or update would leave
	// two students with the same email.
	ErrDuplicateEmail = errors.New("student with this email already exists")

	// ErrInvalidStudent is returned when a record that skipped boundary
	// validation reaches the store anyway.
	ErrInvalidStudent = errors.New("invalid student")
)

// Storage is the record store contract.
//
// CreateStudent, UpdateStudentByID and DeleteStudentByID are totally
// ordered: the email uniqueness check and the write happen atomically.
// Readers never observe a half-applied mutation.
type Storage interface {
	// CreateStudent stores a new student and returns it with its
	// generated ID.
	CreateStudent(name string, email string, age int) (types.Student, error)

	// GetStudentByID fetches a single student by ID.
	GetStudentByID(id string) (types.Student, error)

	// GetStudents returns every student in insertion order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID replaces name, email and age of an existing
	// student. The ID in student is ignored.
	UpdateStudentByID(id string, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	DeleteStudentByID(id string) error
}

// Check rejects records that would break the data model. Backends call
// it before taking their write lock.
func Check(name string, age int) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidStudent)
	}
	if age < types.MinAge || age > types.MaxAge {
		return fmt.Errorf("%w: age %d outside [%d, %d]",
			ErrInvalidStudent, age, types.MinAge, types.MaxAge)
	}
	return nil
}
