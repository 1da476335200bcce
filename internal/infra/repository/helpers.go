package repository

import (
	repo "salesapp/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// unique_violation
const pgUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// gormのエラーをrepositoryの番兵へ寄せる（TranslateError: true 前提）
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isPgUniqueViolation(err):
		return repo.ErrDuplicate
	default:
		return err
	}
}

// Raw/Execの結果はTranslateErrorを通らないのでpgconnのコードを見る
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// page/limitの既定値
func normalizePage(page, limit, def, max int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > max {
		limit = def
	}
	return page, limit
}
