package testkit

import (
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
)

// FuncMocker stands in for a non-HTTP side effect (event publish, websocket
// push). Test wiring hands the application a fake that calls Intercept;
// scenarios then assert the effect happened via an isMock step.
type FuncMocker interface {
	Intercept(payload []byte) error
	Reset()
	WasCalled() int
	Mock() *mock.Mock
}

// GenericFuncMocker is a testify-backed FuncMocker that accepts any call.
type GenericFuncMocker struct {
	m      mock.Mock
	method string
	mu     sync.Mutex
	calls  int
}

func NewFuncMocker(method string) *GenericFuncMocker {
	gm := &GenericFuncMocker{method: method}
	gm.m.On("Intercept", mock.AnythingOfType("[]uint8")).Return(nil)
	return gm
}

func (gm *GenericFuncMocker) Intercept(payload []byte) error {
	gm.mu.Lock()
	gm.calls++
	gm.mu.Unlock()

	return gm.m.Called(payload).Error(0)
}

func (gm *GenericFuncMocker) Reset() {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.calls = 0
	gm.m.ExpectedCalls = nil
	gm.m.Calls = nil
	gm.m.On("Intercept", mock.AnythingOfType("[]uint8")).Return(nil)
}

func (gm *GenericFuncMocker) WasCalled() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.calls
}

func (gm *GenericFuncMocker) Mock() *mock.Mock { return &gm.m }

var (
	mockerMu       sync.RWMutex
	mockerRegistry = map[string]FuncMocker{}
)

// RegisterMocker makes m available to scenarios under method.
func RegisterMocker(method string, m FuncMocker) {
	mockerMu.Lock()
	defer mockerMu.Unlock()
	mockerRegistry[method] = m
}

// GetMocker returns the mocker registered for method, or nil.
func GetMocker(method string) FuncMocker {
	mockerMu.RLock()
	defer mockerMu.RUnlock()
	return mockerRegistry[method]
}

func resetAllMockers() {
	mockerMu.RLock()
	defer mockerMu.RUnlock()
	for _, m := range mockerRegistry {
		m.Reset()
	}
}

// ActivateFuncMocks checks that every non-HTTP isMock step has a mocker.
func ActivateFuncMocks(s *Scenario) error {
	for i, step := range s.NetUtilMockStep {
		if step.Method == "httprequest" || !step.IsMock {
			continue
		}
		if GetMocker(step.Method) == nil && s.IsMockRequired {
			return fmt.Errorf("testkit: no mocker registered for %q (step %d)", step.Method, i)
		}
	}
	return nil
}

// AssertFuncMocksCalled reports every non-HTTP isMock step that was never hit.
func AssertFuncMocksCalled(s *Scenario) []error {
	var errs []error
	seen := map[string]bool{}
	for _, step := range s.NetUtilMockStep {
		if step.Method == "httprequest" || !step.IsMock || seen[step.Method] {
			continue
		}
		seen[step.Method] = true
		if m := GetMocker(step.Method); m != nil && m.WasCalled() == 0 {
			errs = append(errs, fmt.Errorf("mock %q registered but never called during scenario %q", step.Method, s.Name))
		}
	}
	return errs
}
