package sources

import "strings"

// Entry describes one datasource kind as exposed by GET /datasources.
type Entry struct {
	Label       string
	Subproducts []string
}

// Catalog is the immutable table of datasource kinds and their subproducts.
type Catalog struct {
	entries map[Kind]Entry
}

// DefaultCatalog is built once at startup and never mutated.
var DefaultCatalog = NewCatalog(map[Kind]Entry{
	KindZoho:         {Label: "Zoho", Subproducts: []string{"books", "crm", "sheet"}},
	KindHubSpot:      {Label: "HubSpot", Subproducts: []string{"crm_contacts", "crm_deals", "crm_companies"}},
	KindFreshdesk:    {Label: "Freshdesk", Subproducts: []string{"tickets", "contacts"}},
	KindGoogleSheets: {Label: "Google Sheets", Subproducts: []string{"sheet"}},
	KindOdoo:         {Label: "Odoo", Subproducts: []string{"crm", "sales", "inventory", "todo"}},
})

// NewCatalog copies entries so later changes to the argument do not leak in.
func NewCatalog(entries map[Kind]Entry) *Catalog {
	c := &Catalog{entries: make(map[Kind]Entry, len(entries))}
	for k, e := range entries {
		subs := make([]string, len(e.Subproducts))
		copy(subs, e.Subproducts)
		c.entries[k] = Entry{Label: e.Label, Subproducts: subs}
	}
	return c
}

// Kinds returns the catalog's kinds in a stable order.
func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, 0, len(c.entries))
	for _, k := range AllKinds {
		if _, ok := c.entries[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Entry returns a copy of the entry for kind.
func (c *Catalog) Entry(kind Kind) (Entry, bool) {
	e, ok := c.entries[kind]
	if !ok {
		return Entry{}, false
	}
	subs := make([]string, len(e.Subproducts))
	copy(subs, e.Subproducts)
	return Entry{Label: e.Label, Subproducts: subs}, true
}

// Label returns the display name of kind, or the kind itself when unknown.
func (c *Catalog) Label(kind Kind) string {
	if e, ok := c.entries[kind]; ok {
		return e.Label
	}
	return string(kind)
}

// Subproduct reports whether name is a subproduct of kind and returns its canonical spelling.
func (c *Catalog) Subproduct(kind Kind, name string) (string, bool) {
	e, ok := c.entries[kind]
	if !ok {
		return "", false
	}
	for _, s := range e.Subproducts {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}
