package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BearBump/InvtOut/internal/models"
	"github.com/BearBump/InvtOut/internal/services/invtout"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct{}

func (r *fakeRepo) CountCredentials(ctx context.Context, loginName, password string) (int64, error) {
	return 0, nil
}
func (r *fakeRepo) FindManifests(ctx context.Context, field models.LookupField, value, companyCode string) ([]*models.Manifest, error) {
	return nil, nil
}
func (r *fakeRepo) ListApprovedInvtNos(ctx context.Context, billNo, companyCode string) ([]string, error) {
	return nil, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func startAPI(t *testing.T, opts invtAPIOpts, deps invtAPIDeps) (string, context.CancelFunc, chan error) {
	t.Helper()
	if deps.svc == nil {
		deps.svc = invtout.New(&fakeRepo{}, nil, t.TempDir())
	}
	opts.httpAddr = "127.0.0.1:0"

	addrCh := make(chan string, 1)
	opts.onListen = func(httpAddr string) { addrCh <- httpAddr }

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- runInvtAPI(ctx, opts, deps) }()

	select {
	case addr := <-addrCh:
		return "http://" + addr, cancel, errCh
	case err := <-errCh:
		cancel()
		t.Fatalf("server did not start: %v", err)
		return "", nil, nil
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRunInvtAPI_SwaggerAndAPIServed(t *testing.T) {
	sw := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	base, cancel, errCh := startAPI(t, invtAPIOpts{swaggerPath: sw}, invtAPIDeps{})

	code, body := get(t, base+"/swagger.json")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"swagger"`)

	code, body = get(t, base+"/maintain/invtOut/getInvtInfo/ACME/secret/WB1")
	require.Equal(t, http.StatusOK, code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Equal(t, false, resp["success"])
	require.Equal(t, invtout.InfoCredentialsDenied, resp["info"])

	code, body = get(t, base+"/metrics")
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.Contains(body, "invtout_http_requests_total"))

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestRunInvtAPI_NoSwaggerWithoutPath(t *testing.T) {
	base, cancel, errCh := startAPI(t, invtAPIOpts{}, invtAPIDeps{})
	defer func() {
		cancel()
		<-errCh
	}()

	code, _ := get(t, base+"/swagger.json")
	require.Equal(t, http.StatusNotFound, code)

	code, body := get(t, base+"/healthz")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"status":"ok"}`, body)
}

func TestRunInvtAPI_Readiness(t *testing.T) {
	base, cancel, errCh := startAPI(t, invtAPIOpts{}, invtAPIDeps{
		checks: []readinessCheck{
			{name: "postgres", p: fakePinger{}},
			{name: "redis", p: fakePinger{err: errors.New("connection refused")}},
		},
	})
	defer func() {
		cancel()
		<-errCh
	}()

	code, body := get(t, base+"/readyz")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.JSONEq(t, `{"status":"not ready","failed":{"redis":"connection refused"}}`, body)
}

func TestRunInvtAPI_ReadyWhenAllChecksPass(t *testing.T) {
	base, cancel, errCh := startAPI(t, invtAPIOpts{}, invtAPIDeps{
		checks: []readinessCheck{{name: "postgres", p: fakePinger{}}},
	})
	defer func() {
		cancel()
		<-errCh
	}()

	code, body := get(t, base+"/readyz")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"status":"ready"}`, body)
}

func TestRunInvtAPI_MissingSwaggerFile(t *testing.T) {
	err := runInvtAPI(context.Background(), invtAPIOpts{
		httpAddr:    "127.0.0.1:0",
		swaggerPath: filepath.Join(t.TempDir(), "nope.json"),
	}, invtAPIDeps{svc: invtout.New(&fakeRepo{}, nil, t.TempDir())})
	require.Error(t, err)
	require.Contains(t, err.Error(), "swagger file not found")
}
