package sources

import (
	"context"
	"encoding/json"
	"net/http"
)

const DefaultZohoURL = "https://www.zohoapis.com"

// ZohoConfig is the stored config of a Zoho connector.
type ZohoConfig struct {
	AccessToken string `json:"access_token"`
}

var zohoEndpoints = map[string]string{
	"books": "/books/v3/organizations",
	"crm":   "/crm/v2/users",
}

// Zoho reads Books organizations or CRM users with a Zoho-oauthtoken header.
type Zoho struct {
	client  *http.Client
	BaseURL string
}

var _ Source = (*Zoho)(nil)

func NewZoho(client *http.Client) *Zoho {
	return &Zoho{client: client, BaseURL: DefaultZohoURL}
}

func (z *Zoho) Kind() Kind { return KindZoho }

func (z *Zoho) Fetch(ctx context.Context, raw json.RawMessage, subproduct string) Result {
	var cfg ZohoConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return Failed("%s", err.Error())
	}
	if cfg.AccessToken == "" {
		return Failed("Zoho config missing access_token")
	}
	if subproduct == "sheet" {
		return Failed("Zoho sheet access not implemented; use google_sheets datasource for Google Sheets")
	}
	endpoint, ok := zohoEndpoints[subproduct]
	if !ok {
		return Failed("Unsupported Zoho subproduct")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, z.BaseURL+endpoint, nil)
	if err != nil {
		return Failed("%s", err.Error())
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+cfg.AccessToken)
	return do(z.client, req, "Zoho")
}

// Records reads the "data" array.
func (z *Zoho) Records(data json.RawMessage) ([]Record, bool) {
	return objectList(data, MaxRecords, "data")
}
