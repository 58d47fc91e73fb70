// Package storagetest is a behavioural suite every storage.Storage
// implementation must pass.
package storagetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// Run executes the suite. newStore must return an empty store each call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("CreateAssignsDistinctIDs", func(t *testing.T) {
		s := newStore(t)

		a, err := s.CreateStudent("Ada Lovelace", "ada@example.com", 30)
		require.NoError(t, err)
		b, err := s.CreateStudent("Alan Turing", "alan@example.com", 41)
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
		_, err = uuid.Parse(a.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", a.Name)
		assert.Equal(t, "ada@example.com", a.Email)
		assert.Equal(t, 30, a.Age)
	})

	t.Run("CreateDuplicateEmail", func(t *testing.T) {
		s := newStore(t)

		_, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)

		_, err = s.CreateStudent("Other Ada", "ada@example.com", 22)
		assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

		all, err := s.GetStudents()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("EmailMatchIsCaseSensitive", func(t *testing.T) {
		s := newStore(t)

		_, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)
		_, err = s.CreateStudent("Ada", "ADA@example.com", 30)
		assert.NoError(t, err)
	})

	t.Run("CreateRejectsInvalid", func(t *testing.T) {
		s := newStore(t)

		_, err := s.CreateStudent("Old", "old@example.com", 200)
		assert.ErrorIs(t, err, storage.ErrInvalidStudent)
		_, err = s.CreateStudent("Young", "young@example.com", -1)
		assert.ErrorIs(t, err, storage.ErrInvalidStudent)
		_, err = s.CreateStudent("", "anon@example.com", 20)
		assert.ErrorIs(t, err, storage.ErrInvalidStudent)

		all, err := s.GetStudents()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("AgeBoundsAccepted", func(t *testing.T) {
		s := newStore(t)

		_, err := s.CreateStudent("Newborn", "zero@example.com", 0)
		assert.NoError(t, err)
		_, err = s.CreateStudent("Elder", "elder@example.com", 150)
		assert.NoError(t, err)
	})

	t.Run("GetAfterCreate", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)

		got, err := s.GetStudentByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetStudentByID(uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListEmptyIsNotNil", func(t *testing.T) {
		s := newStore(t)

		all, err := s.GetStudents()
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("ListInInsertionOrder", func(t *testing.T) {
		s := newStore(t)

		var want []types.Student
		for i := 0; i < 5; i++ {
			st, err := s.CreateStudent(fmt.Sprintf("S%d", i), fmt.Sprintf("s%d@example.com", i), 20+i)
			require.NoError(t, err)
			want = append(want, st)
		}
		require.NoError(t, s.DeleteStudentByID(want[2].ID))
		want = append(want[:2], want[3:]...)

		all, err := s.GetStudents()
		require.NoError(t, err)
		assert.Equal(t, want, all)
	})

	t.Run("UpdateReplacesFields", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)

		updated, err := s.UpdateStudentByID(created.ID, types.Student{
			ID:    "ignored",
			Name:  "Ada King",
			Email: "countess@example.com",
			Age:   36,
		})
		require.NoError(t, err)
		assert.Equal(t, types.Student{ID: created.ID, Name: "Ada King", Email: "countess@example.com", Age: 36}, updated)

		got, err := s.GetStudentByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		// The old email is free again.
		_, err = s.CreateStudent("New Ada", "ada@example.com", 19)
		assert.NoError(t, err)
	})

	t.Run("UpdateKeepsOwnEmail", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)

		_, err = s.UpdateStudentByID(created.ID, types.Student{Name: "Ada", Email: "ada@example.com", Age: 31})
		assert.NoError(t, err)
	})

	t.Run("UpdateToTakenEmail", func(t *testing.T) {
		s := newStore(t)

		ada, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)
		_, err = s.CreateStudent("Alan", "alan@example.com", 41)
		require.NoError(t, err)

		_, err = s.UpdateStudentByID(ada.ID, types.Student{Name: "Ada", Email: "alan@example.com", Age: 30})
		assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

		got, err := s.GetStudentByID(ada.ID)
		require.NoError(t, err)
		assert.Equal(t, ada, got)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)

		_, err = s.UpdateStudentByID(uuid.NewString(), types.Student{Name: "Ghost", Email: "ghost@example.com", Age: 1})
		assert.ErrorIs(t, err, storage.ErrNotFound)

		all, err := s.GetStudents()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Ada", all[0].Name)
	})

	t.Run("UpdateRejectsInvalid", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)

		_, err = s.UpdateStudentByID(created.ID, types.Student{Name: "Ada", Email: "ada@example.com", Age: 151})
		assert.ErrorIs(t, err, storage.ErrInvalidStudent)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)

		require.NoError(t, s.DeleteStudentByID(created.ID))

		_, err = s.GetStudentByID(created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteStudentByID(created.ID), storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteStudentByID(uuid.NewString()), storage.ErrNotFound)

		// The email is released with the record.
		again, err := s.CreateStudent("Ada", "ada@example.com", 30)
		require.NoError(t, err)
		assert.NotEqual(t, created.ID, again.ID)
	})

	t.Run("ConcurrentCreateSameEmail", func(t *testing.T) {
		s := newStore(t)

		const n = 32
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			ok      int
			dup     int
			unknown []error
		)
		start := make(chan struct{})
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, err := s.CreateStudent(fmt.Sprintf("S%d", i), "same@example.com", 20)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, storage.ErrDuplicateEmail):
					dup++
				default:
					unknown = append(unknown, err)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		assert.Empty(t, unknown)
		assert.Equal(t, 1, ok)
		assert.Equal(t, n-1, dup)

		all, err := s.GetStudents()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ConcurrentReadersAndWriters", func(t *testing.T) {
		s := newStore(t)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				st, err := s.CreateStudent("W", fmt.Sprintf("w%d@example.com", i), i)
				if !assert.NoError(t, err) {
					return
				}
				_, err = s.UpdateStudentByID(st.ID, types.Student{Name: "W2", Email: st.Email, Age: i + 1})
				assert.NoError(t, err)
			}(i)
			go func() {
				defer wg.Done()
				all, err := s.GetStudents()
				assert.NoError(t, err)
				for _, st := range all {
					assert.NotEmpty(t, st.ID)
					assert.NotEmpty(t, st.Name)
				}
			}()
		}
		wg.Wait()

		all, err := s.GetStudents()
		require.NoError(t, err)
		assert.Len(t, all, 8)
	})
}
