package handlers

import (
	"net/http"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/sources"
	"unifiedchat-backend/pkg/httputil"
)

// MetaHandler serves the banner and the datasource catalog.
type MetaHandler struct {
	catalog *sources.Catalog
}

func NewMetaHandler(catalog *sources.Catalog) *MetaHandler {
	return &MetaHandler{catalog: catalog}
}

// HandleIndex handles GET /
func (h *MetaHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	kinds := h.catalog.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	httputil.RespondJSON(w, http.StatusOK, models.IndexResponse{
		Message:     "Unified Chatbot backend running",
		Datasources: names,
	})
}

// HandleDatasources handles GET /datasources
func (h *MetaHandler) HandleDatasources(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]models.DatasourceInfo)
	for _, k := range h.catalog.Kinds() {
		e, _ := h.catalog.Entry(k)
		out[string(k)] = models.DatasourceInfo{Label: e.Label, Subproducts: e.Subproducts}
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}
