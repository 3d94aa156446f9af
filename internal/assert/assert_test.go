package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssertions(t *testing.T) {
	require.PanicsWithValue(t, "expected registry to be not nil", func() {
		NotNil(nil, "registry")
	})
	require.NotPanics(t, func() {
		NotNil(struct{}{}, "registry")
	})

	require.PanicsWithValue(t, "expected workbook to be a non-empty string", func() {
		NotEmptyStr("", "workbook")
	})
	require.NotPanics(t, func() {
		NotEmptyStr("abc", "workbook")
	})

	require.Panics(t, func() {
		Positive(0, "pacing")
	})
	require.NotPanics(t, func() {
		Positive(1.5, "pacing")
	})
}
