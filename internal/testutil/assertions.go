package testutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/stato/internal/module"
)

// AssertValid asserts that validation succeeded.
func AssertValid(t *testing.T, res *module.ValidationResult) {
	t.Helper()
	require.NotNil(t, res, "result is nil")
	assert.True(t, res.Success, "expected success, got errors: %v", res.HardErrors)
	assert.Empty(t, res.HardErrors)
}

// AssertInvalid asserts that validation failed.
func AssertInvalid(t *testing.T, res *module.ValidationResult) {
	t.Helper()
	require.NotNil(t, res, "result is nil")
	assert.False(t, res.Success, "expected failure")
	assert.NotEmpty(t, res.HardErrors)
}

// AssertHasCode asserts that res carries at least one diagnostic with code.
func AssertHasCode(t *testing.T, res *module.ValidationResult, code module.Code) {
	t.Helper()
	require.NotNil(t, res, "result is nil")
	assert.True(t, res.HasCode(code), "expected %s in %v", code, codes(res))
}

// AssertNoCode asserts that res carries no diagnostic with code.
func AssertNoCode(t *testing.T, res *module.ValidationResult, code module.Code) {
	t.Helper()
	require.NotNil(t, res, "result is nil")
	assert.False(t, res.HasCode(code), "unexpected %s in %v", code, codes(res))
}

// AssertCodes asserts the exact multiset of diagnostic codes, in any order.
func AssertCodes(t *testing.T, res *module.ValidationResult, expected ...module.Code) {
	t.Helper()
	require.NotNil(t, res, "result is nil")
	want := make([]string, len(expected))
	for i, c := range expected {
		want[i] = string(c)
	}
	sort.Strings(want)
	assert.Equal(t, want, codes(res), "diagnostic codes mismatch")
}

func codes(res *module.ValidationResult) []string {
	out := []string{}
	for _, d := range res.Diagnostics() {
		out = append(out, string(d.Code))
	}
	sort.Strings(out)
	return out
}
