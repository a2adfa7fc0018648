package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConflictTranslatesDuplicateKey(t *testing.T) {
	err := conflict(fmt.Errorf("failed to create user: %w", gorm.ErrDuplicatedKey), "user")
	assert.ErrorIs(t, err, ErrConflict)

	other := errors.New("disk full")
	assert.Equal(t, other, conflict(other, "user"))
}

func TestNotFoundTranslatesMissingRecord(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound, "book"), ErrNotFound)
	assert.NotErrorIs(t, notFound(errors.New("timeout"), "book"), ErrNotFound)
}
