package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/incident_reporting_api/internal/service"
)

// имена ограничений из миграции 000001
const (
	usersEmailKey    = "users_email_key"
	usersUsernameKey = "users_username_key"
)

// mapPgError переводит нарушения ограничений postgres в ошибки сервиса
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case usersEmailKey:
			return service.ErrDuplicateEmail
		case usersUsernameKey:
			return service.ErrDuplicateUsername
		}
	case pgerrcode.ForeignKeyViolation:
		return service.ErrUserNotFound
	case pgerrcode.CheckViolation:
		return service.NewValidationError(checkField(pgErr.ConstraintName), pgErr.Message)
	case pgerrcode.StringDataRightTruncationDataException:
		// postgres редко заполняет имя колонки для 22001
		field := pgErr.ColumnName
		if field == "" {
			field = "input"
		}
		return service.NewValidationError(field, "is too long")
	}
	return err
}

// checkField достает имя колонки из имени CHECK-ограничения вида incidents_latitude_check
func checkField(constraint string) string {
	if rest, ok := strings.CutPrefix(constraint, "incidents_"); ok {
		if field, ok := strings.CutSuffix(rest, "_check"); ok && field != "" {
			return field
		}
	}
	return "status"
}
