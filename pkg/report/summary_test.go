package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryCounts(t *testing.T) {
	s := NewSummary("LoginTests")
	s.Record("TestA", "passed", "")
	s.Record("TestB", "passed", "")
	s.Record("TestC", "failed", "expected Products")
	s.Record("TestD", "disabled", "")

	assert.Equal(t, 4, s.Total())
	assert.Equal(t, map[string]int{"passed": 2, "failed": 1, "disabled": 1}, s.Counts())

	failures := s.Failures()
	assert.Len(t, failures, 1)
	assert.Equal(t, "TestC", failures[0].Name)
}

func TestSummaryRender(t *testing.T) {
	s := NewSummary("LoginTests")
	s.Record("TestSuccessfulLogin", "passed", "")
	s.Record("TestLockedUser", "failed", "error banner missing\nstack trace follows")
	s.Record("TestSlow", "aborted", "skipped")

	out := s.Render()
	for _, want := range []string{"LoginTests", "3 tests", "passed", "failed", "aborted", "TestLockedUser", "error banner missing"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "stack trace follows")
	assert.NotContains(t, out, "disabled")
}

func TestSummaryRenderOrder(t *testing.T) {
	s := NewSummary("Suite")
	s.Record("x", "disabled", "")
	s.Record("y", "custom", "")
	s.Record("z", "passed", "")

	out := s.Render()
	passed := strings.Index(out, "passed")
	disabled := strings.Index(out, "disabled")
	custom := strings.Index(out, "custom")
	assert.True(t, passed < disabled && disabled < custom, "unexpected order:\n%s", out)
}
