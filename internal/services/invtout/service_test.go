package invtout

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/BearBump/InvtOut/internal/cache/rediscache"
	"github.com/BearBump/InvtOut/internal/models"
	"github.com/stretchr/testify/require"
)

type row struct {
	m      models.Manifest
	owners [4]string
}

// fakeRepo applies the same predicate as the SQL: exact key match and any of four owners.
type fakeRepo struct {
	users map[string]string
	rows  []row

	findCalls int
}

func (r *fakeRepo) CountCredentials(ctx context.Context, loginName, password string) (int64, error) {
	if p, ok := r.users[loginName]; ok && p == password {
		return 1, nil
	}
	return 0, nil
}

func (r *fakeRepo) owned(rw row, companyCode string) bool {
	for _, o := range rw.owners {
		if o != "" && o == companyCode {
			return true
		}
	}
	return false
}

func (r *fakeRepo) FindManifests(ctx context.Context, field models.LookupField, value, companyCode string) ([]*models.Manifest, error) {
	r.findCalls++
	var out []*models.Manifest
	for i := range r.rows {
		rw := r.rows[i]
		key := rw.m.LogisticsNo
		if field == models.LookupByOrderNo {
			key = rw.m.OrderNo
		}
		if key == nil || *key != value || !r.owned(rw, companyCode) {
			continue
		}
		m := rw.m
		out = append(out, &m)
	}
	return out, nil
}

func (r *fakeRepo) ListApprovedInvtNos(ctx context.Context, billNo, companyCode string) ([]string, error) {
	var out []string
	for _, rw := range r.rows {
		if rw.m.BillNo == nil || *rw.m.BillNo != billNo || !r.owned(rw, companyCode) {
			continue
		}
		if rw.m.AppStatus == nil || *rw.m.AppStatus != models.AppStatusCleared {
			continue
		}
		out = append(out, *rw.m.InvtNo)
	}
	return out, nil
}

func newFixture() *fakeRepo {
	return &fakeRepo{
		users: map[string]string{"ACME": "secret"},
		rows: []row{
			{m: models.Manifest{LogisticsNo: strp("WB1"), OrderNo: strp("O1"), InvtNo: strp("I1"), BillNo: strp("BILL1"), AppStatus: strp("899")}, owners: [4]string{"ACME", "", "", ""}},
			{m: models.Manifest{LogisticsNo: strp("WB2"), OrderNo: strp("O2"), InvtNo: strp("I2"), BillNo: strp("BILL1"), AppStatus: strp("899")}, owners: [4]string{"", "ACME", "", ""}},
			{m: models.Manifest{LogisticsNo: strp("WB3"), OrderNo: strp("O3"), InvtNo: strp("I3"), BillNo: strp("BILL1"), AppStatus: strp("800")}, owners: [4]string{"", "", "ACME", ""}},
			{m: models.Manifest{LogisticsNo: strp("WB4"), OrderNo: strp("O4"), InvtNo: strp("I4"), BillNo: strp("BILL1"), AppStatus: strp("899")}, owners: [4]string{"", "", "", "ACME"}},
			{m: models.Manifest{LogisticsNo: strp("WB1"), OrderNo: strp("O5"), InvtNo: strp("I5"), BillNo: strp("BILL1"), AppStatus: strp("899")}, owners: [4]string{"X", "Y", "Z", "W"}},
		},
	}
}

func TestQuery_Scenario_WaybillLookup(t *testing.T) {
	repo := newFixture()
	svc := New(repo, nil, t.TempDir())

	out := svc.Query(context.Background(), ByLogisticsNo, Identity{CompanyCode: "ACME", Password: "secret"}, "WB1")
	require.Equal(t, AuthGranted, out.Auth.Status)
	require.Equal(t, ResultFound, out.Result.Kind)
	require.Len(t, out.Result.Records, 1)
	require.Equal(t, "WB1", *out.Result.Records[0].LogisticsNo)
	require.Equal(t, "I1", *out.Result.Records[0].InvtNo)

	out = svc.Query(context.Background(), ByLogisticsNo, Identity{CompanyCode: "ACME", Password: "wrong"}, "WB1")
	require.Equal(t, AuthDenied, out.Auth.Status)
	require.Empty(t, out.Result.Records)
	require.Equal(t, 1, repo.findCalls)
}

func TestQuery_EachOwnershipFieldGrantsVisibility(t *testing.T) {
	repo := newFixture()
	svc := New(repo, nil, t.TempDir())
	id := Identity{CompanyCode: "ACME", Password: "secret"}

	for _, order := range []string{"O1", "O2", "O3", "O4"} {
		out := svc.Query(context.Background(), ByOrderNo, id, order)
		require.Equal(t, ResultFound, out.Result.Kind, order)
		require.Len(t, out.Result.Records, 1, order)
	}

	out := svc.Query(context.Background(), ByOrderNo, id, "O5")
	require.Equal(t, ResultEmpty, out.Result.Kind)
}

func TestExport_Scenario_UnknownTokenWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(rediscache.NewClient(mr.Addr(), "", 0))
	dir := filepath.Join(t.TempDir(), "export")
	svc := New(newFixture(), rc, dir)

	exp, err := svc.ExportSummaryList(context.Background(), "tok1", "BILL1")
	require.NoError(t, err)
	b, err := os.ReadFile(exp.Path)
	require.NoError(t, err)
	require.Equal(t, InfoTokenDenied, string(b))
	require.True(t, strings.HasPrefix(exp.FileName, "BILL1_"))
	require.True(t, strings.HasSuffix(exp.FileName, "_summary_list.txt"))
}

func TestExport_KnownTokenFiltersCleared(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(rediscache.NewClient(mr.Addr(), "", 0))
	require.NoError(t, rc.Set(context.Background(), "tok2", []byte("ACME"), time.Minute))

	svc := New(newFixture(), rc, t.TempDir())
	exp, err := svc.ExportSummaryList(context.Background(), "tok2", "BILL1")
	require.NoError(t, err)
	b, err := os.ReadFile(exp.Path)
	require.NoError(t, err)
	// I3 has status 800, I5 belongs to other companies
	require.Equal(t, "I1\nI2\nI4\n", string(b))
	require.Equal(t, 3, exp.Count)
}

func TestExport_FileNamesFollowClock(t *testing.T) {
	svc := New(newFixture(), nil, t.TempDir())
	at := time.Date(2024, 12, 31, 23, 59, 58, 0, time.Local)
	svc.now = func() time.Time { return at }

	first, err := svc.ExportSummaryList(context.Background(), "", "B")
	require.NoError(t, err)
	at = at.Add(time.Second)
	second, err := svc.ExportSummaryList(context.Background(), "", "B")
	require.NoError(t, err)

	require.Equal(t, "B_20241231235958_summary_list.txt", first.FileName)
	require.Equal(t, "B_20241231235959_summary_list.txt", second.FileName)
	require.NotEqual(t, first.Path, second.Path)
}

func TestNew_DefaultExportDir(t *testing.T) {
	svc := New(newFixture(), nil, "")
	require.Equal(t, "export", svc.ExportDir())
	require.NotNil(t, svc.Gate())
}

func TestGate_EmptyTokenValueIsDenied(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(rediscache.NewClient(mr.Addr(), "", 0))
	require.NoError(t, rc.Set(context.Background(), "blank", []byte(""), time.Minute))

	g := NewGate(newFixture(), rc)
	require.Equal(t, AuthDenied, g.ResolveToken(context.Background(), "blank").Status)
	require.Equal(t, AuthDenied, g.ResolveToken(context.Background(), "").Status)
}

func TestStatusStrings(t *testing.T) {
	require.Equal(t, "granted", AuthGranted.String())
	require.Equal(t, "denied", AuthDenied.String())
	require.Equal(t, "fault", AuthFault.String())
	require.Equal(t, "found", ResultFound.String())
	require.Equal(t, "empty", ResultEmpty.String())
	require.Equal(t, "fault", ResultFault.String())
}
