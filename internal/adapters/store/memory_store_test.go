package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "k", "v"))

	value, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, "v", value)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_GetMissingKeyIsNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "absent")

	var appErr *apperrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestMemoryStore_SetOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "k", "old"))
	assert.NoError(t, s.Set(ctx, "k", "new"))

	value, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, "new", value)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "k", "v"))
	assert.NoError(t, s.Delete(ctx, "k"))
	assert.NoError(t, s.Delete(ctx, "never-there"))

	_, err := s.Get(ctx, "k")
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}
