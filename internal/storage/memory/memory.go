// Package memory provides the default, process-local implementation of
// storage.Storage.
//
// All records live in a map guarded by a single sync.RWMutex. Mutations
// take the write lock for the whole check-then-write sequence, so two
// concurrent creates with the same email can never both succeed. Reads
// take the read lock and copy what they return.
//
// An email → id index keeps the uniqueness check O(1).
package memory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// Memory is an in-memory storage.Storage. The zero value is not usable;
// call New.
type Memory struct {
	mu       sync.RWMutex
	students map[string]types.Student
	byEmail  map[string]string
	order    []string

	// newID is swapped out in tests.
	newID func() (uuid.UUID, error)
}

// New returns an empty store.
func New() *Memory {
	return &Memory{
		students: make(map[string]types.Student),
		byEmail:  make(map[string]string),
		newID:    uuid.NewRandom,
	}
}

func (m *Memory) CreateStudent(name, email string, age int) (types.Student, error) {
	if err := storage.Check(name, age); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[email]; taken {
		return types.Student{}, storage.ErrDuplicateEmail
	}

	id, err := m.freshID()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: generate id: %w", err)
	}

	student := types.Student{ID: id, Name: name, Email: email, Age: age}
	m.students[id] = student
	m.byEmail[email] = id
	m.order = append(m.order, id)

	return student, nil
}

// freshID draws random UUIDs until one is not held by a live record.
// Callers hold the write lock.
func (m *Memory) freshID() (string, error) {
	for {
		u, err := m.newID()
		if err != nil {
			return "", err
		}
		id := u.String()
		if _, exists := m.students[id]; !exists {
			return id, nil
		}
	}
}

func (m *Memory) GetStudentByID(id string) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	student, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	return student, nil
}

func (m *Memory) GetStudents() ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0, len(m.order))
	for _, id := range m.order {
		students = append(students, m.students[id])
	}
	return students, nil
}

// UpdateStudentByID replaces all fields but the ID. Moving to an email
// held by a different student fails with storage.ErrDuplicateEmail.
func (m *Memory) UpdateStudentByID(id string, student types.Student) (types.Student, error) {
	if err := storage.Check(student.Name, student.Age); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	if owner, taken := m.byEmail[student.Email]; taken && owner != id {
		return types.Student{}, storage.ErrDuplicateEmail
	}

	updated := types.Student{ID: id, Name: student.Name, Email: student.Email, Age: student.Age}
	delete(m.byEmail, current.Email)
	m.byEmail[updated.Email] = id
	m.students[id] = updated

	return updated, nil
}

func (m *Memory) DeleteStudentByID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[id]
	if !ok {
		return storage.ErrNotFound
	}

	delete(m.students, id)
	delete(m.byEmail, student.Email)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	return nil
}

