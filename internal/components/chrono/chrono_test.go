package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	impl, err := NewStandardImpl()
	require.NoError(t, err)
	require.Equal(t, "America/New_York", impl.Location().String())
	require.Equal(t, impl.Location(), impl.Now().Location())
}

func TestFixedImpl(t *testing.T) {
	at := time.Date(2020, time.May, 1, 12, 0, 0, 0, time.UTC)
	f := FixedImpl{At: at}
	require.Equal(t, at, f.Now())
	require.Equal(t, time.UTC, f.Location())
}
