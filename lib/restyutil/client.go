package restyutil

import (
	"time"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type ClientOptions struct {
	BaseUrl string
	// Name identifies the client in traces, ex. "covidtracking".
	Name      string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond defaults to 2.
	RequestsPerSecond float64
	// Dump, when not nil, receives every response body.
	Dump *FilesystemOutput
}

// NewClient creates a rate limited, instrumented resty client.
func NewClient(opts ClientOptions, tel telemetry.API) *resty.Client {
	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(opts.BaseUrl)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Minute
	}
	client.SetTimeout(timeout)
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "covidexit/1.0"
	}
	client.SetHeader("user-agent", userAgent)

	rps := opts.RequestsPerSecond
	if rps == 0 {
		rps = 2
	}
	assert.Positive(rps, "requests per second")
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(rate.Limit(rps), 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, opts.Name, tel)
	if opts.Dump != nil {
		client.OnAfterResponse(opts.Dump.onAfterResponse(opts.Name))
	}

	return client
}
