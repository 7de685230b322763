package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/starford/brewstock/internal/apperr"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/report"
	"github.com/starford/brewstock/internal/sse"
	"github.com/starford/brewstock/internal/testutil"
)

// testConfig points a default config at the fake upstream and a temp
// credentials file, optionally seeded with the fixture pair.
func testConfig(t *testing.T, up *testutil.Upstream, seed bool) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Brewfather.BaseURL = up.URL
	cfg.Credentials.Path = filepath.Join(t.TempDir(), "credentials.yaml")
	if seed {
		store, err := credentials.NewFileStore(cfg.Credentials.Path)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Save(context.Background(), testutil.Credentials()); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func testOpts(cfg *Config) []Option {
	return []Option{WithConfig(cfg), WithLogOutput(io.Discard)}
}

func TestReport_Text(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)

	var out bytes.Buffer
	if err := Report(context.Background(), &out, KindAll, FormatText, testOpts(cfg)...); err != nil {
		t.Fatalf("Report: %v", err)
	}
	text := out.String()
	for _, want := range []string{"== Fermentables ==", "== Hops ==", "Weyermann", "7 - Czech Lager", "-2 !", "0 *"} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestReport_JSONSingleKind(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)

	var out bytes.Buffer
	if err := Report(context.Background(), &out, "hops", FormatJSON, testOpts(cfg)...); err != nil {
		t.Fatalf("Report: %v", err)
	}
	var tbl report.Table
	if err := json.Unmarshal(out.Bytes(), &tbl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tbl.Kind != "hops" || len(tbl.Rows) != 2 {
		t.Errorf("table = %+v", tbl)
	}
}

func TestReport_BadArguments(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)

	err := Report(context.Background(), io.Discard, "yeasts", FormatText, testOpts(cfg)...)
	if !errors.Is(err, apperr.ErrInvalidKind) {
		t.Errorf("err = %v, want ErrInvalidKind", err)
	}
	if err := Report(context.Background(), io.Discard, KindAll, "csv", testOpts(cfg)...); err == nil {
		t.Error("unknown format should fail")
	}
	if up.Requests() != 0 {
		t.Error("bad arguments must not reach brewfather")
	}
}

func TestReport_NoCredentials(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, false)
	err := Report(context.Background(), io.Discard, KindAll, FormatText, testOpts(cfg)...)
	if !errors.Is(err, apperr.ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}

func TestExport(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)
	out := filepath.Join(t.TempDir(), "out", "stock.xlsx")

	if err := Export(context.Background(), out, testOpts(cfg)...); err != nil {
		t.Fatalf("Export: %v", err)
	}
	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 2 {
		t.Errorf("sheets = %v", sheets)
	}
}

func TestExport_FailureLeavesNoFile(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)
	up.Fail(http.StatusServiceUnavailable)
	out := filepath.Join(t.TempDir(), "stock.xlsx")

	if err := Export(context.Background(), out, testOpts(cfg)...); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no file should be written when the fetch fails")
	}
}

func TestCredentialsCommands(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, false)
	ctx := context.Background()

	var out bytes.Buffer
	if err := ShowCredentials(ctx, &out, testOpts(cfg)...); err != nil {
		t.Fatal(err)
	}
	if out.String() != "credentials not configured\n" {
		t.Errorf("show = %q", out.String())
	}

	if err := SetCredentials(ctx, io.Discard, credentials.Credentials{UserID: "x"}, testOpts(cfg)...); err == nil {
		t.Error("incomplete pair should fail")
	}

	out.Reset()
	if err := SetCredentials(ctx, &out, testutil.Credentials(), testOpts(cfg)...); err != nil {
		t.Fatalf("SetCredentials: %v", err)
	}
	if out.String() != "credentials saved; 2 planned batches found\n" {
		t.Errorf("set = %q", out.String())
	}

	out.Reset()
	if err := ShowCredentials(ctx, &out, testOpts(cfg)...); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "user_id: "+testutil.UserID) || strings.Contains(out.String(), testutil.APIKey) {
		t.Errorf("show = %q", out.String())
	}
}

func TestCredentialsCommands_SQLite(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, false)
	cfg.Credentials.Driver = credentials.DriverSQLite
	cfg.Credentials.Path = filepath.Join(t.TempDir(), "brewstock.db")
	ctx := context.Background()

	if err := SetCredentials(ctx, io.Discard, testutil.Credentials(), testOpts(cfg)...); err != nil {
		t.Fatalf("SetCredentials: %v", err)
	}
	var out bytes.Buffer
	if err := Report(ctx, &out, "fermentables", FormatText, testOpts(cfg)...); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(out.String(), "Simpsons") {
		t.Errorf("report = %s", out.String())
	}
}

func TestSetCredentials_RejectedKeyStillSaved(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, false)
	ctx := context.Background()

	var out bytes.Buffer
	bad := credentials.Credentials{UserID: "someone", APIKey: "wrong"}
	if err := SetCredentials(ctx, &out, bad, testOpts(cfg)...); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "credentials saved, but loading the dashboard failed") {
		t.Errorf("set = %q", out.String())
	}
}

func TestShowBatch(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)

	var out bytes.Buffer
	if err := ShowBatch(context.Background(), &out, "b-12", testOpts(cfg)...); err != nil {
		t.Fatalf("ShowBatch: %v", err)
	}
	for _, want := range []string{"12 - Pale Ale", "Ale", "12.4 °P", "2.6 °P", "5.3%", "40"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("batch output missing %q:\n%s", want, out.String())
		}
	}

	err := ShowBatch(context.Background(), io.Discard, "nope", testOpts(cfg)...)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMissingConfig(t *testing.T) {
	if err := Report(context.Background(), io.Discard, KindAll, FormatText); err == nil {
		t.Error("commands should require a config")
	}
}

func TestHTTPHandler(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "tok"}

	app, err := newApplication(testOpts(cfg))
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.bootstrap()
	if err != nil {
		t.Fatal(err)
	}
	defer c.close()
	broker := sse.NewBroker(0)
	defer broker.Close()
	h := newHTTPHandler(c, broker)

	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	if w := get("/health/live", ""); w.Code != http.StatusOK {
		t.Errorf("live = %d", w.Code)
	}
	if w := get("/health/ready", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready before first refresh = %d, want 503", w.Code)
	}
	if w := get("/", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("page without token = %d, want 401", w.Code)
	}
	if w := get("/", "tok"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Citra") {
		t.Errorf("page = %d", w.Code)
	}
	if w := get("/api/dashboard", "tok"); w.Code != http.StatusOK {
		t.Errorf("api dashboard = %d", w.Code)
	}
	if w := get("/health/ready", ""); w.Code != http.StatusOK {
		t.Errorf("ready after refresh = %d", w.Code)
	}

	w := get("/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d", w.Code)
	}
	for _, want := range []string{"brewstock_upstream_requests_total", "brewstock_refresh_total"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestHTTPHandler_MetricsDisabled(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	cfg := testConfig(t, up, true)
	cfg.Metrics.Enabled = false

	app, err := newApplication(testOpts(cfg))
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.bootstrap()
	if err != nil {
		t.Fatal(err)
	}
	defer c.close()
	broker := sse.NewBroker(0)
	defer broker.Close()

	w := httptest.NewRecorder()
	newHTTPHandler(c, broker).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("metrics disabled = %d, want 404", w.Code)
	}
}
