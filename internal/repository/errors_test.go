package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/incident_reporting_api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		field   string
		message string
	}{
		{
			name: "duplicate email",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usersEmailKey},
			want: service.ErrDuplicateEmail,
		},
		{
			name: "duplicate username",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usersUsernameKey},
			want: service.ErrDuplicateUsername,
		},
		{
			name: "missing user",
			err:  &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			want: service.ErrUserNotFound,
		},
		{
			name:    "value too long without column",
			err:     &pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException, Message: "value too long for type character varying(255)"},
			field:   "input",
			message: "validation failed: input is too long",
		},
		{
			name:    "value too long with column",
			err:     fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException, ColumnName: "title"}),
			field:   "title",
			message: "validation failed: title is too long",
		},
		{
			name:  "latitude check",
			err:   &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "incidents_latitude_check", Message: "violates check"},
			field: "latitude",
		},
		{
			name:  "status history check",
			err:   &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "status_history_check", Message: "violates check"},
			field: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError(tt.err)

			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				return
			}
			var verr *service.ValidationError
			require.ErrorAs(t, got, &verr)
			assert.True(t, verr.Has(tt.field), verr.Error())
			if tt.message != "" {
				assert.Equal(t, tt.message, verr.Error())
			}
		})
	}
}

func TestMapPgError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapPgError(plain))

	deadlock := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
	assert.Equal(t, error(deadlock), mapPgError(deadlock))
}
