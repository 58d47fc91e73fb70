package memory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/storagetest"
)

func TestMemory(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestCreateRetriesOnLiveIDCollision(t *testing.T) {
	m := New()
	first, err := m.CreateStudent("Ada", "ada@example.com", 30)
	require.NoError(t, err)

	fixed := uuid.MustParse(first.ID)
	next := uuid.MustParse("6f1c3c1e-8a53-4d6f-9a8e-7a4c2b1d0e9f")
	calls := 0
	m.newID = func() (uuid.UUID, error) {
		calls++
		if calls == 1 {
			return fixed, nil
		}
		return next, nil
	}

	second, err := m.CreateStudent("Alan", "alan@example.com", 41)
	require.NoError(t, err)
	assert.Equal(t, next.String(), second.ID)
	assert.Equal(t, 2, calls)
}

func TestCreateIDFailureLeavesStoreUntouched(t *testing.T) {
	m := New()
	boom := errors.New("entropy exhausted")
	m.newID = func() (uuid.UUID, error) { return uuid.Nil, boom }

	_, err := m.CreateStudent("Ada", "ada@example.com", 30)
	assert.ErrorIs(t, err, boom)

	all, err := m.GetStudents()
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, m.byEmail)
}

func TestGetStudentsReturnsCopy(t *testing.T) {
	m := New()
	_, err := m.CreateStudent("Ada", "ada@example.com", 30)
	require.NoError(t, err)

	all, err := m.GetStudents()
	require.NoError(t, err)
	all[0].Name = "Mutated"

	again, err := m.GetStudents()
	require.NoError(t, err)
	assert.Equal(t, "Ada", again[0].Name)
}
