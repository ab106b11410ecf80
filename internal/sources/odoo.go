package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// OdooConfig is the stored config of an Odoo connector. APIKey is optional.
type OdooConfig struct {
	BaseURL  string `json:"base_url"`
	DB       string `json:"db"`
	Username string `json:"username"`
	Password string `json:"password"`
	APIKey   string `json:"api_key,omitempty"`
}

var odooEndpoints = map[string]string{
	"crm":       "/api/crm.lead",
	"sales":     "/api/sale.order",
	"inventory": "/api/stock.inventory",
	"todo":      "/api/project.task",
}

// Odoo reads models through the Odoo REST API module with basic auth and an optional bearer key.
type Odoo struct {
	client *http.Client
}

var _ Source = (*Odoo)(nil)

func NewOdoo(client *http.Client) *Odoo {
	return &Odoo{client: client}
}

func (o *Odoo) Kind() Kind { return KindOdoo }

func (o *Odoo) Fetch(ctx context.Context, raw json.RawMessage, subproduct string) Result {
	var cfg OdooConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return Failed("%s", err.Error())
	}
	if cfg.BaseURL == "" || cfg.DB == "" || cfg.Username == "" || cfg.Password == "" {
		return Failed("Missing required Odoo connection details (base_url, db, username, password)")
	}
	endpoint, ok := odooEndpoints[strings.ToLower(subproduct)]
	if !ok {
		return Failed("Unsupported Odoo subproduct")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+endpoint, nil)
	if err != nil {
		return Failed("%s", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	// Basic credentials are required and take precedence over the API key.
	req.SetBasicAuth(cfg.Username, cfg.Password)
	return do(o.client, req, "Odoo")
}

// Records reads the top-level array of model records. An empty array is not usable.
func (o *Odoo) Records(data json.RawMessage) ([]Record, bool) {
	records, ok := objectList(data, MaxRecords)
	return records, ok && len(records) > 0
}
