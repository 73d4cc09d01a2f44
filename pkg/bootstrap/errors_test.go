package bootstrap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      *Error
		sentinel error
		want     string
	}{
		{
			name:     "schema conflict",
			err:      schemaConflict("customers", "customers.email: column missing", nil),
			sentinel: ErrSchemaConflict,
			want:     "SchemaConflict on customers: customers.email: column missing",
		},
		{
			name:     "referential violation",
			err:      referentialViolation("order_details", "order_id=1 references missing orders.id", nil),
			sentinel: ErrReferentialViolation,
			want:     "ReferentialViolation on order_details: order_id=1 references missing orders.id",
		},
		{
			name:     "storage unavailable with cause",
			err:      storageUnavailable("", "commit failed", cause),
			sentinel: ErrStorageUnavailable,
			want:     "StorageUnavailable: commit failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())

			wrapped := fmt.Errorf("bootstrap: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.err.Kind, KindOf(wrapped))
			assert.True(t, IsKind(wrapped, tt.err.Kind))
			assert.Equal(t, tt.err.Table, TableOf(wrapped))

			for _, other := range []error{ErrSchemaConflict, ErrReferentialViolation, ErrStorageUnavailable} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}

	t.Run("unwraps cause", func(t *testing.T) {
		assert.ErrorIs(t, storageUnavailable("", "commit failed", cause), cause)
	})

	t.Run("foreign errors have no kind", func(t *testing.T) {
		assert.Equal(t, Kind(""), KindOf(cause))
		assert.Empty(t, TableOf(cause))
	})
}
