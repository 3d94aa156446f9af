package hhs

import (
	"context"
	"fmt"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/scrapers/rawtable"
	"covidexit/internal/table"
	"covidexit/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// DefaultUrl serves the HHS estimated ICU bed occupancy by state.
const DefaultUrl = "https://opendata.arcgis.com/datasets/f527cf1835294eb280a4e5ee3c5c209c_0.geojson"

const (
	report_client_icu = "client.icu"
)

// internal to the feature service, it changes between publications
const objectIdProperty = "OBJECTID"

type Client struct {
	http *resty.Client
	url  string
	tel  telemetry.API
}

func NewClient(url string, dump *restyutil.FilesystemOutput, tel telemetry.API) *Client {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("hhs", tel)
	if url == "" {
		url = DefaultUrl
	}
	return &Client{
		http: restyutil.NewClient(restyutil.ClientOptions{
			Name: "hhs",
			Dump: dump,
		}, tel),
		url: url,
		tel: tel,
	}
}

// ICU fetches the properties of every feature of the GeoJSON collection.
func (c *Client) ICU(ctx context.Context) (*table.Table, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		c.tel.ReportBroken(report_client_icu, err)
		return nil, err
	}
	if res.IsError() {
		err = fmt.Errorf("icu: unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_icu, err)
		return nil, err
	}

	out, err := decodeFeatures(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_icu, err)
		return nil, err
	}
	c.tel.ReportCount(report_client_icu, int64(out.Len()))
	return out, nil
}

func decodeFeatures(body []byte) (*table.Table, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("icu: invalid geojson")
	}
	features := gjson.GetBytes(body, "features")
	if !features.IsArray() {
		return nil, fmt.Errorf("icu: geojson has no features")
	}
	properties, err := rawtable.FromResult(gjson.GetBytes(body, "features.#.properties"))
	if err != nil {
		return nil, fmt.Errorf("icu: %w", err)
	}

	var keep []string
	for _, c := range properties.Columns() {
		if c != objectIdProperty {
			keep = append(keep, c)
		}
	}
	return properties.Select(keep...)
}
