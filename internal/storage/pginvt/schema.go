package pginvt

import (
	"context"

	"github.com/pkg/errors"
)

// EnsureSchema creates the credential and manifest tables when they are missing.
// Production tables are owned by the customs platform; this is for local stands and tests.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS user_user (
  id BIGSERIAL PRIMARY KEY,
  login_name TEXT NOT NULL,
  password TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_user_user_login_name ON user_user(login_name)`,
		`
CREATE TABLE IF NOT EXISTS ceb3_invt_head (
  id BIGSERIAL PRIMARY KEY,
  order_no TEXT NULL,
  logistics_no TEXT NULL,
  invt_no TEXT NULL,
  bill_no TEXT NULL,
  cop_no TEXT NULL,
  sys_date TIMESTAMP NULL,
  app_status TEXT NULL,
  rtn_status TEXT NULL,
  rtn_info TEXT NULL,
  rtn_time TIMESTAMP NULL,
  cus_status TEXT NULL,
  cus_time TIMESTAMP NULL,
  ebc_code TEXT NULL,
  ebp_code TEXT NULL,
  logistics_code TEXT NULL,
  agent_code TEXT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_ceb3_invt_head_logistics_no ON ceb3_invt_head(logistics_no)`,
		`CREATE INDEX IF NOT EXISTS idx_ceb3_invt_head_order_no ON ceb3_invt_head(order_no)`,
		`CREATE INDEX IF NOT EXISTS idx_ceb3_invt_head_bill_no ON ceb3_invt_head(bill_no, app_status)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
