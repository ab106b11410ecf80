package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/services"
	"unifiedchat-backend/internal/sources"
	"unifiedchat-backend/pkg/httputil"
)

// ConnectorService defines the interface expected from the connector service.
type ConnectorService interface {
	Connect(ctx context.Context, req models.ConnectRequest) (*models.Connector, error)
	TestConnection(ctx context.Context, id string) (sources.Result, error)
}

type ConnectorHandler struct {
	connectorService ConnectorService
	logger           *zap.Logger
}

func NewConnectorHandler(svc ConnectorService, logger *zap.Logger) *ConnectorHandler {
	return &ConnectorHandler{connectorService: svc, logger: logger.Named("connector_handler")}
}

// HandleConnect handles POST /connect
func (h *ConnectorHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	connector, err := h.connectorService.Connect(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			httputil.RespondError(w, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, services.ErrUnknownDatasource):
			httputil.RespondError(w, http.StatusBadRequest, "Unknown datasource")
		case errors.Is(err, services.ErrUnsupportedSubproduct):
			httputil.RespondError(w, http.StatusBadRequest, "Unsupported subproduct for datasource")
		default:
			h.logger.Error("Connect failed", zap.String("connector_id", req.ConnectorID), zap.Error(err))
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to save connector")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Connector saved", ConnectorID: connector.ID})
}

// HandleTestConnection handles GET /test_connection/{connector_id}.
// The fetch result is returned as-is, including fetch errors, with status 200.
func (h *ConnectorHandler) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	connectorID := chi.URLParam(r, "connector_id")

	result, err := h.connectorService.TestConnection(r.Context(), connectorID)
	if err != nil {
		if errors.Is(err, services.ErrConnectorNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Connector not found")
			return
		}
		h.logger.Error("TestConnection failed", zap.String("connector_id", connectorID), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to test connector")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
