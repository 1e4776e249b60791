package pginvt

import (
	"context"
	"fmt"

	"github.com/BearBump/InvtOut/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// ownedBy matches a company code against any of the four role columns; $2 is the code.
const ownedBy = `(t.ebc_code = $2
    OR t.ebp_code = $2
    OR t.logistics_code = $2
    OR t.agent_code = $2)`

const manifestColumns = `
  t.order_no, t.logistics_no, t.invt_no, t.bill_no,
  to_char(t.sys_date, 'YYYY-MM-DD HH24:MI:SS'),
  t.app_status, t.rtn_status, t.rtn_info,
  to_char(t.rtn_time, 'YYYY-MM-DD HH24:MI:SS'),
  t.cus_status,
  to_char(t.cus_time, 'YYYY-MM-DD HH24:MI:SS'),
  t.cop_no`

// FindManifests returns rows where field equals value and companyCode owns the row.
// No ordering is imposed.
func (s *Storage) FindManifests(ctx context.Context, field models.LookupField, value, companyCode string) ([]*models.Manifest, error) {
	if !field.Valid() {
		return nil, errors.Errorf("unsupported lookup field %q", field)
	}

	q := fmt.Sprintf(`
SELECT%s
FROM ceb3_invt_head t
WHERE t.%s = $1
  AND %s
`, manifestColumns, field, ownedBy)

	var out []*models.Manifest
	err := s.withTx(ctx, readOnly, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, q, value, companyCode)
		if err != nil {
			return errors.Wrap(err, "select manifests")
		}
		defer rows.Close()

		for rows.Next() {
			var m models.Manifest
			if err := rows.Scan(
				&m.OrderNo, &m.LogisticsNo, &m.InvtNo, &m.BillNo,
				&m.SysDate,
				&m.AppStatus, &m.RtnStatus, &m.RtnInfo,
				&m.RtnTime,
				&m.CusStatus,
				&m.CusTime,
				&m.CopNo,
			); err != nil {
				return errors.Wrap(err, "scan manifest")
			}
			out = append(out, &m)
		}
		if rows.Err() != nil {
			return errors.Wrap(rows.Err(), "rows")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListApprovedInvtNos returns invt_no of cleared manifests under billNo owned by companyCode.
func (s *Storage) ListApprovedInvtNos(ctx context.Context, billNo, companyCode string) ([]string, error) {
	q := `
SELECT t.invt_no
FROM ceb3_invt_head t
WHERE t.app_status = $3
  AND t.bill_no = $1
  AND ` + ownedBy

	var out []string
	err := s.withTx(ctx, readOnly, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, q, billNo, companyCode, models.AppStatusCleared)
		if err != nil {
			return errors.Wrap(err, "select invt numbers")
		}
		defer rows.Close()

		for rows.Next() {
			var invtNo *string
			if err := rows.Scan(&invtNo); err != nil {
				return errors.Wrap(err, "scan invt number")
			}
			if invtNo == nil {
				continue
			}
			out = append(out, *invtNo)
		}
		if rows.Err() != nil {
			return errors.Wrap(rows.Err(), "rows")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
