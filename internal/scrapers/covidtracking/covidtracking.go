package covidtracking

import (
	"context"
	"fmt"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/scrapers/rawtable"
	"covidexit/internal/table"
	"covidexit/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://covidtracking.com/api/v1"

const (
	report_client_daily   = "client.daily"
	report_client_current = "client.current"
)

type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(baseUrl string, dump *restyutil.FilesystemOutput, tel telemetry.API) *Client {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("covidtracking", tel)
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return &Client{
		http: restyutil.NewClient(restyutil.ClientOptions{
			BaseUrl: baseUrl,
			Name:    "covidtracking",
			Dump:    dump,
		}, tel),
		tel: tel,
	}
}

func (c *Client) get(ctx context.Context, reportId, path string) (*table.Table, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		c.tel.ReportBroken(reportId, err)
		return nil, err
	}
	if res.IsError() {
		err = fmt.Errorf("%s: unexpected status %s", path, res.Status())
		c.tel.ReportBroken(reportId, err)
		return nil, err
	}

	out, err := rawtable.FromJSON(res.Body(), "")
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		c.tel.ReportBroken(reportId, err)
		return nil, err
	}
	c.tel.ReportCount(reportId, int64(out.Len()))
	return out, nil
}

// Daily fetches every (state, date) observation ever published.
func (c *Client) Daily(ctx context.Context) (*table.Table, error) {
	return c.get(ctx, report_client_daily, "/states/daily.json")
}

// Current fetches the latest observation of each state.
func (c *Client) Current(ctx context.Context) (*table.Table, error) {
	return c.get(ctx, report_client_current, "/states/current.json")
}
