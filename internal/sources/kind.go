// Package sources fetches data from the supported third-party datasources and turns the
// responses into the records used to enrich chat prompts.
package sources

import (
	"fmt"
	"strings"
)

// Kind identifies a datasource. The set is closed: every Kind has exactly one Source.
type Kind string

const (
	KindZoho         Kind = "zoho"
	KindHubSpot      Kind = "hubspot"
	KindFreshdesk    Kind = "freshdesk"
	KindGoogleSheets Kind = "google_sheets"
	KindOdoo         Kind = "odoo"
)

// AllKinds lists every datasource kind in catalog order.
var AllKinds = []Kind{KindZoho, KindHubSpot, KindFreshdesk, KindGoogleSheets, KindOdoo}

// ParseKind resolves a datasource name case-insensitively ("Odoo" and "odoo" are the same kind).
func ParseKind(name string) (Kind, error) {
	candidate := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range AllKinds {
		if k == candidate {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown datasource %q", name)
}
