package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shashiranjanraj/tiffin/pkg/auth"
	tiffinhttp "github.com/shashiranjanraj/tiffin/pkg/http"
)

// Option customises a run.
type Option func(*runConfig)

type runConfig struct {
	before []func(t *testing.T, s *Scenario)
}

// Before runs fn ahead of every scenario, e.g. to reset database state.
func Before(fn func(t *testing.T, s *Scenario)) Option {
	return func(c *runConfig) { c.before = append(c.before, fn) }
}

// Run executes one scenario file against handler as a subtest.
func Run(t *testing.T, handler http.Handler, scenarioPath string, opts ...Option) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}
	cfg := newConfig(opts)
	t.Run(s.Name, func(t *testing.T) { runScenario(t, handler, s, cfg) })
}

// RunDir runs every scenario file in dir, in file-name order.
func RunDir(t *testing.T, handler http.Handler, dir string, opts ...Option) {
	t.Helper()

	paths, err := scenarioFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg := newConfig(opts)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) { runScenario(t, handler, s, cfg) })
	}
}

func newConfig(opts []Option) *runConfig {
	cfg := &runConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func runScenario(t *testing.T, handler http.Handler, s *Scenario, cfg *runConfig) {
	t.Helper()

	for _, fn := range cfg.before {
		fn(t, s)
	}

	var reqBody io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		reqBody = bytes.NewReader(data)
	}

	mt := NewMockTransport(s)
	original := tiffinhttp.DefaultClient.Transport
	tiffinhttp.DefaultClient.Transport = mt
	defer func() { tiffinhttp.DefaultClient.Transport = original }()

	resetAllMockers()
	defer resetAllMockers()
	if err := ActivateFuncMocks(s); err != nil {
		t.Fatalf("[%s] activate func mocks: %v", s.Name, err)
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.Auth != nil {
		token, err := auth.GenerateToken(s.Auth.UserID, s.Auth.Role)
		if err != nil {
			t.Fatalf("[%s] mint token: %v", s.Name, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
		} else {
			AssertJSONBody(t, s, expected, rec.Body.Bytes())
		}
	}
	AssertMocksAllCalled(t, s, mt)
}
