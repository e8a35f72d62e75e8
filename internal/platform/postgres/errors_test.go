package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/devschro/next-precedent/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows maps to not found", fmt.Errorf("query: %w", sql.ErrNoRows), store.ErrNotFound},
		{
			"unique violation maps to duplicate",
			&pgconn.PgError{Code: "23505", ConstraintName: "document_chunks_document_id_chunk_index_key"},
			store.ErrDuplicate,
		},
		{
			"foreign key violation maps to invalid entity",
			&pgconn.PgError{Code: "23503", ConstraintName: "jobs_org_id_fkey"},
			store.ErrInvalidEntity,
		},
		{
			"check violation maps to invalid entity",
			&pgconn.PgError{Code: "23514", ConstraintName: "jobs_status_check"},
			store.ErrInvalidEntity,
		},
		{
			"not null violation maps to invalid entity",
			&pgconn.PgError{Code: "23502", ColumnName: "org_id"},
			store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapErrorUnknownErrorPassesThrough(t *testing.T) {
	err := errors.New("connection reset by peer")
	assert.Equal(t, err, MapError(err))
}
