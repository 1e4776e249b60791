package invtout

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BearBump/InvtOut/internal/broker/messages"
	"github.com/BearBump/InvtOut/internal/cache"
	"github.com/BearBump/InvtOut/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	exportTimeLayout = "20060102150405"
	exportFileSuffix = "_summary_list.txt"
)

var (
	ErrInvalidBillNo    = errors.New("invalid bill number")
	ErrRateLimited      = errors.New("export rate limit exceeded")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invtout_queries_total",
		Help: "Manifest lookups by variant and outcome.",
	}, []string{"variant", "outcome"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invtout_exports_total",
		Help: "Summary list exports by outcome.",
	}, []string{"outcome"})
)

type Repository interface {
	CredentialRepository
	FindManifests(ctx context.Context, field models.LookupField, value, companyCode string) ([]*models.Manifest, error)
	ListApprovedInvtNos(ctx context.Context, billNo, companyCode string) ([]string, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo Repository
	gate *Gate

	exportDir    string
	strictFaults bool
	now          func() time.Time

	limiter     cache.RateLimiter
	exportLimit int64

	publisher Publisher
	topic     string
}

func New(repo Repository, tokens cache.BytesCache, exportDir string) *Service {
	if exportDir == "" {
		exportDir = "export"
	}
	return &Service{
		repo:      repo,
		gate:      NewGate(repo, tokens),
		exportDir: exportDir,
		now:       time.Now,
	}
}

// WithStrictFaults makes the export fail with ErrStoreUnavailable instead of
// degrading a store fault into a denial or an empty file.
func (s *Service) WithStrictFaults(strict bool) *Service {
	s.strictFaults = strict
	return s
}

// WithRateLimit throttles exports per token; perMinute <= 0 disables it.
func (s *Service) WithRateLimit(rl cache.RateLimiter, perMinute int) *Service {
	if rl != nil && perMinute > 0 {
		s.limiter = rl
		s.exportLimit = int64(perMinute)
	}
	return s
}

func (s *Service) WithPublisher(p Publisher, topic string) *Service {
	if p != nil && topic != "" {
		s.publisher = p
		s.topic = topic
	}
	return s
}

func (s *Service) ExportDir() string {
	return s.exportDir
}

func (s *Service) Gate() *Gate {
	return s.gate
}

// Query authorizes the caller per v.Auth and, if granted, runs the lookup.
// The domain query never runs for a denied or faulted identity.
func (s *Service) Query(ctx context.Context, v Variant, id Identity, lookupValue string) Outcome {
	auth := s.gate.Authorize(ctx, v.Auth, id)
	if auth.Status != AuthGranted {
		queriesTotal.WithLabelValues(v.Name, "auth_"+auth.Status.String()).Inc()
		return Outcome{Auth: auth}
	}
	res := s.FindManifests(ctx, v, lookupValue, auth.CompanyCode)
	return Outcome{Auth: auth, Result: res}
}

// FindManifests returns the rows matching lookupValue on v.Field that companyCode owns.
func (s *Service) FindManifests(ctx context.Context, v Variant, lookupValue, companyCode string) QueryResult {
	records, err := s.repo.FindManifests(ctx, v.Field, lookupValue, companyCode)
	if err != nil {
		slog.Error("find manifests",
			"variant", v.Name, "lookup", lookupValue, "company_code", companyCode, "error", err.Error())
		queriesTotal.WithLabelValues(v.Name, ResultFault.String()).Inc()
		return QueryResult{Kind: ResultFault, Err: err}
	}
	if len(records) == 0 {
		queriesTotal.WithLabelValues(v.Name, ResultEmpty.String()).Inc()
		return QueryResult{Kind: ResultEmpty}
	}
	queriesTotal.WithLabelValues(v.Name, ResultFound.String()).Inc()
	return QueryResult{Kind: ResultFound, Records: records}
}

// Export describes a written summary list file.
type Export struct {
	Path     string
	FileName string
	Auth     AuthResult
	// Count is the number of manifest numbers written; zero for a denial file.
	Count int
	// Fault is set when the store failed and an empty list was written instead.
	Fault error
}

// ExportSummaryList resolves token, writes the cleared manifest numbers of billNo owned by
// the token's company into a new file and returns it. An unknown token still yields a
// file, containing only InfoTokenDenied.
func (s *Service) ExportSummaryList(ctx context.Context, token, billNo string) (*Export, error) {
	if !validBillNo(billNo) {
		exportsTotal.WithLabelValues("invalid").Inc()
		return nil, errors.Wrapf(ErrInvalidBillNo, "%q", billNo)
	}

	if err := s.allowExport(ctx, token); err != nil {
		exportsTotal.WithLabelValues("rate_limited").Inc()
		return nil, err
	}

	now := s.now()
	fileName := billNo + "_" + now.Format(exportTimeLayout) + exportFileSuffix
	exp := &Export{
		FileName: fileName,
		Path:     filepath.Join(s.exportDir, fileName),
	}

	exp.Auth = s.gate.ResolveToken(ctx, token)
	switch exp.Auth.Status {
	case AuthFault:
		if s.strictFaults {
			exportsTotal.WithLabelValues("fault").Inc()
			return nil, errors.Wrap(ErrStoreUnavailable, exp.Auth.Err.Error())
		}
		fallthrough
	case AuthDenied:
		if err := writeFile(exp.Path, func(w *bufio.Writer) error {
			_, err := w.WriteString(InfoTokenDenied)
			return err
		}); err != nil {
			return nil, err
		}
		exportsTotal.WithLabelValues("denied").Inc()
		return exp, nil
	}

	invtNos, err := s.repo.ListApprovedInvtNos(ctx, billNo, exp.Auth.CompanyCode)
	if err != nil {
		slog.Error("list approved invt numbers",
			"bill_no", billNo, "company_code", exp.Auth.CompanyCode, "error", err.Error())
		if s.strictFaults {
			exportsTotal.WithLabelValues("fault").Inc()
			return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
		}
		exp.Fault = err
		invtNos = nil
	}

	if err := writeFile(exp.Path, func(w *bufio.Writer) error {
		for _, no := range invtNos {
			if _, err := w.WriteString(no + "\n"); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	exp.Count = len(invtNos)

	if exp.Fault != nil {
		exportsTotal.WithLabelValues("fault").Inc()
	} else {
		exportsTotal.WithLabelValues("written").Inc()
		s.publishExported(ctx, exp, billNo, now)
	}
	return exp, nil
}

func (s *Service) allowExport(ctx context.Context, token string) error {
	if s.limiter == nil || s.exportLimit <= 0 {
		return nil
	}
	key := fmt.Sprintf("rl:export:%s:%s", token, s.now().Format("200601021504"))
	allowed, n, err := s.limiter.Allow(ctx, key, s.exportLimit, 70*time.Second)
	if err != nil {
		// лимитер недоступен: не блокируем выгрузку
		slog.Warn("export rate limiter", "error", err.Error())
		return nil
	}
	if !allowed {
		slog.Warn("export rate limit exceeded", "count", n)
		return ErrRateLimited
	}
	return nil
}

func (s *Service) publishExported(ctx context.Context, exp *Export, billNo string, at time.Time) {
	if s.publisher == nil {
		return
	}
	b, err := json.Marshal(messages.SummaryExported{
		EventID:     uuid.NewString(),
		CompanyCode: exp.Auth.CompanyCode,
		BillNo:      billNo,
		FileName:    exp.FileName,
		InvtCount:   exp.Count,
		ExportedAt:  at.UTC(),
	})
	if err != nil {
		slog.Error("marshal summary exported", "error", err.Error())
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, []byte(billNo), b); err != nil {
		slog.Warn("publish summary exported", "bill_no", billNo, "error", err.Error())
	}
}

// validBillNo keeps the generated file name inside the export directory.
func validBillNo(billNo string) bool {
	if billNo == "" || billNo == "." || billNo == ".." {
		return false
	}
	return !strings.ContainsAny(billNo, `/\`+"\x00")
}

func writeFile(path string, fill func(w *bufio.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create export dir")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write export file")
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "flush export file")
	}
	return errors.Wrap(f.Close(), "close export file")
}
