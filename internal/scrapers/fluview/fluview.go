package fluview

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"covidexit/internal/assert"
	"covidexit/internal/components/telemetry"
	"covidexit/internal/scrapers/rawtable"
	"covidexit/internal/table"
	"covidexit/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

const DefaultUrl = "https://gis.cdc.gov/grasp/flu2/PostPhase02DataDownload"

// Files of the FluView download used for influenza-like-illness criteria.
const (
	IliNetCsv           = "ILINet.csv"
	PublicHealthLabsCsv = "WHO_NREVSS_Public_Health_Labs.csv"
)

// DefaultSeason is the FluView season id of 2019-20.
const DefaultSeason = 59

const (
	report_client_download = "client.download"
)

// every csv of the download starts with a one line title
const preambleLines = 1

// states are region type 5, FluView numbers them 1 through 59
const (
	regionTypeStates = 5
	regionCount      = 59
)

type idName struct {
	ID   int `json:"ID"`
	Name any `json:"Name"`
}

type downloadRequest struct {
	AppVersion   string   `json:"AppVersion"`
	DatasourceDT []idName `json:"DatasourceDT"`
	RegionTypeId int      `json:"RegionTypeId"`
	SubRegionsDT []idName `json:"SubRegionsDT"`
	SeasonsDT    []idName `json:"SeasonsDT"`
}

type Client struct {
	http   *resty.Client
	url    string
	season int
	tel    telemetry.API
}

func NewClient(url string, season int, dump *restyutil.FilesystemOutput, tel telemetry.API) *Client {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("fluview", tel)
	if url == "" {
		url = DefaultUrl
	}
	if season == 0 {
		season = DefaultSeason
	}
	return &Client{
		http: restyutil.NewClient(restyutil.ClientOptions{
			Name: "fluview",
			Dump: dump,
		}, tel),
		url:    url,
		season: season,
		tel:    tel,
	}
}

func newDownloadRequest(season int) downloadRequest {
	regions := make([]idName, regionCount)
	for i := range regions {
		regions[i] = idName{ID: i + 1, Name: i + 1}
	}
	return downloadRequest{
		AppVersion: "Public",
		DatasourceDT: []idName{
			{ID: 0, Name: "WHO_NREVSS"},
			{ID: 1, Name: "ILINet"},
		},
		RegionTypeId: regionTypeStates,
		SubRegionsDT: regions,
		SeasonsDT:    []idName{{ID: season, Name: fmt.Sprint(season)}},
	}
}

// Download fetches the ILINet and public health lab tables of every state.
func (c *Client) Download(ctx context.Context) (map[string]*table.Table, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json;charset=UTF-8").
		SetBody(newDownloadRequest(c.season)).
		Post(c.url)
	if err != nil {
		c.tel.ReportBroken(report_client_download, err)
		return nil, err
	}
	if res.IsError() {
		err = fmt.Errorf("download: unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_download, err)
		return nil, err
	}

	out, err := decodeDownload(res.Body(), IliNetCsv, PublicHealthLabsCsv)
	if err != nil {
		c.tel.ReportBroken(report_client_download, err)
		return nil, err
	}
	for name, t := range out {
		c.tel.ReportCount(fmt.Sprintf("%s.%s", report_client_download, name), int64(t.Len()))
	}
	return out, nil
}

func decodeDownload(archive []byte, names ...string) (map[string]*table.Table, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	files := map[string]*zip.File{}
	for _, f := range reader.File {
		files[f.Name] = f
	}

	out := make(map[string]*table.Table, len(names))
	for _, name := range names {
		f, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("download: %s is missing from the archive", name)
		}
		t, err := readCsv(f)
		if err != nil {
			return nil, fmt.Errorf("download: %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

func readCsv(f *zip.File) (*table.Table, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	contents, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return rawtable.FromCSV(bytes.NewReader(contents), preambleLines)
}
