// Package testkit drives HTTP API tests from JSON scenario files.
//
// A scenario names the request to fire, the caller identity, the expected
// status and body, and any outgoing calls to intercept:
//
//	testdata/
//	  order_success.json        scenario
//	  order_success_req.json    request body
//	  order_success_res.json    expected response body
//
//	func TestOrders(t *testing.T) {
//	    testkit.RunDir(t, handler, "testdata", testkit.Before(reseed))
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	Headers         map[string]string `json:"headers"`

	// Auth, when set, is turned into a signed bearer token.
	Auth *ScenarioAuth `json:"auth"`

	ResponseFileName string `json:"responseFileName"`
	ExpectedCode     int    `json:"expectedCode"`

	// IsMockRequired fails the scenario on any outgoing call without a
	// matching mock step.
	IsMockRequired bool `json:"isMockRequired"`

	NetUtilMockStep []MockStep `json:"netUtilMockStep"`

	dir string
}

type ScenarioAuth struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// MockStep describes one intercepted outgoing call. Method "httprequest"
// intercepts pkg/http; any other method is dispatched to a registered
// FuncMocker.
type MockStep struct {
	Method     string         `json:"method"`
	IsMock     bool           `json:"isMock"`
	MatchURL   string         `json:"matchUrl"` // prefix; empty matches any URL
	ReturnData MockReturnData `json:"returnData"`
}

type MockReturnData struct {
	StatusCode int    `json:"statusCode"` // default 200
	Body       string `json:"body"`       // base64
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	for i, step := range s.NetUtilMockStep {
		if step.Method == "" {
			return fmt.Errorf("netUtilMockStep[%d].method is required", i)
		}
	}
	return nil
}

func (s *Scenario) RequestBodyPath() string  { return s.resolve(s.RequestFileName) }
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// scenarioFiles lists scenario files in dir, skipping the *_req.json and
// *_res.json body files that live next to them.
func scenarioFiles(dir string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range all {
		base := filepath.Base(p)
		if matched, _ := filepath.Match("*_req.json", base); matched {
			continue
		}
		if matched, _ := filepath.Match("*_res.json", base); matched {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	return out, nil
}
