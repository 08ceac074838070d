package attendance

import (
	"errors"
	"strings"

	attendanceerrors "go-patrol/internal/attendance/errors"
	"go-patrol/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapRepositoryError turns constraint violations into catalogue errors; anything else
// is treated as a transient storage failure the guard can retry by scanning again.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case ConstraintGuardSiteDate:
				return attendanceerrors.ErrDuplicateCheckIn
			case ConstraintOpenGuard:
				return attendanceerrors.ErrSessionAlreadyOpen
			}
		case pgForeignKeyViolation:
			if pgErr.ConstraintName == ConstraintSiteFK {
				return attendanceerrors.ErrInvalidCode
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		if strings.Contains(errMsg, ConstraintGuardSiteDate) {
			return attendanceerrors.ErrDuplicateCheckIn
		}
		if strings.Contains(errMsg, ConstraintOpenGuard) {
			return attendanceerrors.ErrSessionAlreadyOpen
		}
	}
	if strings.Contains(errMsg, "foreign key") && strings.Contains(errMsg, ConstraintSiteFK) {
		return attendanceerrors.ErrInvalidCode
	}

	return apperror.Transient(err)
}
