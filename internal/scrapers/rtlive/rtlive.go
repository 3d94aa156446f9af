package rtlive

import (
	"bytes"
	"context"
	"fmt"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/scrapers/rawtable"
	"covidexit/internal/table"
	"covidexit/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

const DefaultUrl = "https://d14wlfuexuxgcm.cloudfront.net/covid/rt.csv"

const (
	report_client_estimates = "client.estimates"
)

type Client struct {
	http *resty.Client
	url  string
	tel  telemetry.API
}

func NewClient(url string, dump *restyutil.FilesystemOutput, tel telemetry.API) *Client {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("rtlive", tel)
	if url == "" {
		url = DefaultUrl
	}
	return &Client{
		http: restyutil.NewClient(restyutil.ClientOptions{
			Name: "rtlive",
			Dump: dump,
		}, tel),
		url: url,
		tel: tel,
	}
}

// Estimates fetches the daily Rt estimates of every state.
func (c *Client) Estimates(ctx context.Context) (*table.Table, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		c.tel.ReportBroken(report_client_estimates, err)
		return nil, err
	}
	if res.IsError() {
		err = fmt.Errorf("rt.csv: unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_estimates, err)
		return nil, err
	}

	out, err := rawtable.FromCSV(bytes.NewReader(res.Body()), 0)
	if err != nil {
		err = fmt.Errorf("rt.csv: %w", err)
		c.tel.ReportBroken(report_client_estimates, err)
		return nil, err
	}
	c.tel.ReportCount(report_client_estimates, int64(out.Len()))
	return out, nil
}
