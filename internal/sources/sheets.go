package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/buger/jsonparser"
)

const (
	DefaultSheetsURL   = "https://sheets.googleapis.com"
	DefaultSheetsRange = "Sheet1"
)

// SheetsConfig is the stored config of a Google Sheets connector.
// SpreadsheetID and Tab are accepted as aliases of SheetID and Range.
type SheetsConfig struct {
	SheetID       string `json:"sheet_id"`
	SpreadsheetID string `json:"spreadsheet_id"`
	Range         string `json:"range"`
	Tab           string `json:"tab"`
	AccessToken   string `json:"access_token"`
	APIKey        string `json:"api_key"`
}

func (c SheetsConfig) id() string {
	if c.SheetID != "" {
		return c.SheetID
	}
	return c.SpreadsheetID
}

func (c SheetsConfig) valueRange() string {
	switch {
	case c.Range != "":
		return c.Range
	case c.Tab != "":
		return c.Tab
	default:
		return DefaultSheetsRange
	}
}

// GoogleSheets reads the values of one range. An access token takes precedence over an API key.
type GoogleSheets struct {
	client  *http.Client
	BaseURL string
}

var _ Source = (*GoogleSheets)(nil)

func NewGoogleSheets(client *http.Client) *GoogleSheets {
	return &GoogleSheets{client: client, BaseURL: DefaultSheetsURL}
}

func (g *GoogleSheets) Kind() Kind { return KindGoogleSheets }

// Fetch ignores subproduct: a sheets connector always reads one range.
func (g *GoogleSheets) Fetch(ctx context.Context, raw json.RawMessage, _ string) Result {
	var cfg SheetsConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return Failed("%s", err.Error())
	}
	id := cfg.id()
	if id == "" {
		return Failed("Missing sheet_id in config")
	}
	if cfg.AccessToken == "" && cfg.APIKey == "" {
		return Failed("Provide either api_key or access_token in config")
	}

	endpoint := g.BaseURL + "/v4/spreadsheets/" + url.PathEscape(id) + "/values/" + url.PathEscape(cfg.valueRange())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failed("%s", err.Error())
	}
	if cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	} else {
		q := req.URL.Query()
		q.Set("key", cfg.APIKey)
		req.URL.RawQuery = q.Encode()
	}
	return do(g.client, req, "Google Sheets")
}

// Records zips every row after the first with the header row; the shorter of the two wins.
// A header row alone yields no records but still counts as data.
func (g *GoogleSheets) Records(data json.RawMessage) ([]Record, bool) {
	values, dataType, _, err := jsonparser.Get(data, "values")
	if err != nil || dataType != jsonparser.Array {
		return nil, false
	}

	var headers []string
	var records []Record
	first := true
	_, _ = jsonparser.ArrayEach(values, func(row []byte, rowType jsonparser.ValueType, _ int, err error) {
		if err != nil || rowType != jsonparser.Array {
			return
		}
		cells := stringRow(row)
		if first {
			headers, first = cells, false
			return
		}
		n := min(len(headers), len(cells))
		record := make(Record, n)
		for i := 0; i < n; i++ {
			record[i] = Field{Key: headers[i], Value: cells[i]}
		}
		records = append(records, record)
	})
	return records, !first
}
