package sources

import (
	"context"
	"encoding/json"
	"net/http"
)

const DefaultHubSpotURL = "https://api.hubapi.com"

// HubSpotConfig is the stored config of a HubSpot connector.
type HubSpotConfig struct {
	AccessToken string `json:"access_token"`
}

var hubSpotObjects = map[string]string{
	"crm_contacts":  "contacts",
	"crm_deals":     "deals",
	"crm_companies": "companies",
}

// HubSpot reads CRM objects with a bearer token.
type HubSpot struct {
	client  *http.Client
	BaseURL string
}

var _ Source = (*HubSpot)(nil)

func NewHubSpot(client *http.Client) *HubSpot {
	return &HubSpot{client: client, BaseURL: DefaultHubSpotURL}
}

func (h *HubSpot) Kind() Kind { return KindHubSpot }

func (h *HubSpot) Fetch(ctx context.Context, raw json.RawMessage, subproduct string) Result {
	var cfg HubSpotConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return Failed("%s", err.Error())
	}
	if cfg.AccessToken == "" {
		return Failed("HubSpot config missing access_token")
	}
	object, ok := hubSpotObjects[subproduct]
	if !ok {
		return Failed("Unsupported HubSpot subproduct")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/crm/v3/objects/"+object, nil)
	if err != nil {
		return Failed("%s", err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	return do(h.client, req, "HubSpot")
}

// Records reads the "results" array. An empty array still counts as data.
func (h *HubSpot) Records(data json.RawMessage) ([]Record, bool) {
	return objectList(data, MaxRecords, "results")
}
