package pginvt

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// CountCredentials returns how many user_user rows match the login/password pair exactly.
func (s *Storage) CountCredentials(ctx context.Context, loginName, password string) (int64, error) {
	var n int64
	err := s.withTx(ctx, readOnly, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
SELECT COUNT(1)
FROM user_user t
WHERE t.login_name = $1
  AND t.password = $2
`, loginName, password).Scan(&n)
	})
	if err != nil {
		return 0, errors.Wrap(err, "count credentials")
	}
	return n, nil
}
