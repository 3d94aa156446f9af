package rtlive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"covidexit/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestEstimates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("date,region,index,mean,median,lower_80,upper_80\n" +
			"2020-06-01,AK,0,1.02,1.01,0.8,1.2\n" +
			"2020-06-01,AL,0,0.98,0.97,0.9,1.1\n"))
	}))
	defer server.Close()

	out, err := NewClient(server.URL, nil, telemetry.NewRecorder()).Estimates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	require.Equal(t, "AL", out.Get(1, "region").Text())

	mean, ok := out.Get(0, "mean").Float()
	require.True(t, ok)
	require.Equal(t, 1.02, mean)
}

func TestEstimatesMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("date,region\n2020-06-01\n"))
	}))
	defer server.Close()

	rec := telemetry.NewRecorder()
	_, err := NewClient(server.URL, nil, rec).Estimates(context.Background())
	require.ErrorContains(t, err, "rt.csv")
	require.Len(t, rec.Broken, 1)
}
