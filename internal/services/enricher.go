package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"unifiedchat-backend/internal/metrics"
	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/sources"
)

// Enrichment outcomes, also used as metric labels.
const (
	EnrichedWithData  = "data"
	EnrichedWithError = "error_note"
	NotEnriched       = "none"
)

// connectorFetcher is the part of ConnectorService the enricher depends on.
type connectorFetcher interface {
	Resolve(ctx context.Context, id string) (*models.Connector, error)
	Fetch(ctx context.Context, c *models.Connector) (sources.Source, sources.Result, error)
}

// Enricher appends a bounded excerpt of freshly fetched connector data to a chat message.
type Enricher struct {
	connectors connectorFetcher
	catalog    *sources.Catalog
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewEnricher(connectors connectorFetcher, catalog *sources.Catalog, m *metrics.Metrics, logger *zap.Logger) *Enricher {
	return &Enricher{connectors: connectors, catalog: catalog, metrics: m, logger: logger.Named("enricher")}
}

// Enrich never fails: a missing connector, an unknown datasource or an unusable response
// leaves the message unchanged, and a fetch error becomes a one-line note.
func (e *Enricher) Enrich(ctx context.Context, bot *models.Chatbot, message string) string {
	enriched, outcome := e.enrich(ctx, bot, message)
	e.metrics.ObserveEnrichment(outcome)
	return enriched
}

func (e *Enricher) enrich(ctx context.Context, bot *models.Chatbot, message string) (string, string) {
	if bot.ConnectorID == "" {
		return message, NotEnriched
	}
	conn, err := e.connectors.Resolve(ctx, bot.ConnectorID)
	if err != nil {
		if !errors.Is(err, ErrConnectorNotFound) {
			e.logger.Warn("could not resolve connector", zap.String("chatbot_id", bot.ID), zap.String("connector_id", bot.ConnectorID), zap.Error(err))
		}
		return message, NotEnriched
	}

	src, res, err := e.connectors.Fetch(ctx, conn)
	if err != nil {
		e.logger.Debug("connector has no matching source", zap.String("connector_id", conn.ID), zap.String("datasource", conn.Datasource))
		return message, NotEnriched
	}
	label := e.catalog.Label(src.Kind())

	if records, ok := src.Records(res.Data); ok {
		return fmt.Sprintf("%s\n\nReference Data from %s (%s):\n%s", message, label, conn.Subproduct, sources.Excerpt(records)), EnrichedWithData
	}
	if reason, ok := res.ErrorReason(); ok {
		return fmt.Sprintf("%s\n\n(%s fetch error: %s)", message, label, reason), EnrichedWithError
	}
	return message, NotEnriched
}
