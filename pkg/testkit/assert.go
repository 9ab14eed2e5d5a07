package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func AssertStatusCode(t *testing.T, s *Scenario, got int) {
	t.Helper()
	assert.Equal(t, s.ExpectedCode, got, "[%s] HTTP status code mismatch", s.Name)
}

// AssertJSONBody compares expected and actual after decoding both, so key
// order and whitespace never matter.
func AssertJSONBody(t *testing.T, s *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var want, got any
	require.NoError(t, json.Unmarshal(expected, &want), "[%s] expected response file is not valid JSON", s.Name)
	if !assert.NoError(t, json.Unmarshal(actual, &got), "[%s] actual response is not valid JSON\nbody: %s", s.Name, actual) {
		return
	}
	assert.Equal(t, want, got, "[%s] response body mismatch", s.Name)
}

// AssertMocksAllCalled fails for every isMock step that was never hit.
func AssertMocksAllCalled(t *testing.T, s *Scenario, mt *MockTransport) {
	t.Helper()
	for _, err := range mt.AssertAllCalled() {
		assert.NoError(t, err, "[%s]", s.Name)
	}
	for _, err := range AssertFuncMocksCalled(s) {
		assert.NoError(t, err, "[%s]", s.Name)
	}
}
