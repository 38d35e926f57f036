package repository

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))

	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.Wrap(gorm.ErrDuplicatedKey, "insert failed")))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_email_imports_firm_message" (SQLSTATE 23505)`)))
}
