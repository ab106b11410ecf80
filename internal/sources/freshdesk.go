package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// DefaultFreshdeskURL is expanded with the account's domain.
const DefaultFreshdeskURL = "https://{domain}.freshdesk.com"

// FreshdeskConfig is the stored config of a Freshdesk connector.
type FreshdeskConfig struct {
	Domain string `json:"domain"`
	APIKey string `json:"api_key"`
}

// Freshdesk reads tickets or contacts with basic auth (api_key, "X").
type Freshdesk struct {
	client *http.Client
	// URLTemplate has "{domain}" replaced by the configured domain.
	URLTemplate string
}

var _ Source = (*Freshdesk)(nil)

func NewFreshdesk(client *http.Client) *Freshdesk {
	return &Freshdesk{client: client, URLTemplate: DefaultFreshdeskURL}
}

func (f *Freshdesk) Kind() Kind { return KindFreshdesk }

func (f *Freshdesk) Fetch(ctx context.Context, raw json.RawMessage, subproduct string) Result {
	var cfg FreshdeskConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return Failed("%s", err.Error())
	}
	if cfg.Domain == "" || cfg.APIKey == "" {
		return Failed("Missing domain or api_key in Freshdesk config")
	}

	url := strings.ReplaceAll(f.URLTemplate, "{domain}", cfg.Domain) + "/api/v2/" + subproduct
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Failed("%s", err.Error())
	}
	req.SetBasicAuth(cfg.APIKey, "X")
	return do(f.client, req, "Freshdesk")
}

// Records reads the top-level array of tickets or contacts. An empty array is not usable.
func (f *Freshdesk) Records(data json.RawMessage) ([]Record, bool) {
	records, ok := objectList(data, MaxRecords)
	return records, ok && len(records) > 0
}
