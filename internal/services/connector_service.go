package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buger/jsonparser"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/crypto"
	"unifiedchat-backend/internal/metrics"
	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/sources"
	"unifiedchat-backend/internal/store"
)

// ConnectorService validates, stores and exercises connectors.
type ConnectorService struct {
	store    store.Store
	sealer   *crypto.ConfigSealer
	catalog  *sources.Catalog
	registry *sources.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewConnectorService(
	s store.Store,
	sealer *crypto.ConfigSealer,
	catalog *sources.Catalog,
	registry *sources.Registry,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ConnectorService {
	return &ConnectorService{
		store:    s,
		sealer:   sealer,
		catalog:  catalog,
		registry: registry,
		metrics:  m,
		logger:   logger.Named("connectors"),
	}
}

// Connect validates the datasource and subproduct against the catalog and upserts the
// connector. Nothing is written when validation fails.
func (s *ConnectorService) Connect(ctx context.Context, req models.ConnectRequest) (*models.Connector, error) {
	if req.ConnectorID == "" || req.Username == "" || req.Datasource == "" || req.Subproduct == "" {
		return nil, ErrMissingFields
	}
	kind, err := sources.ParseKind(req.Datasource)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDatasource, req.Datasource)
	}
	if _, ok := s.catalog.Entry(kind); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDatasource, req.Datasource)
	}
	subproduct, ok := s.catalog.Subproduct(kind, req.Subproduct)
	if !ok {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnsupportedSubproduct, req.Subproduct, kind)
	}

	config := req.Config
	if len(config) == 0 || string(config) == "null" {
		config = json.RawMessage(`{}`)
	}
	sealed, err := s.sealer.Seal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to seal connector config: %w", err)
	}

	connector := models.Connector{
		ID:         req.ConnectorID,
		Username:   req.Username,
		Datasource: string(kind),
		Subproduct: subproduct,
		Config:     sealed,
	}
	if err := s.store.UpsertConnector(ctx, connector); err != nil {
		return nil, fmt.Errorf("failed to save connector: %w", err)
	}

	s.logger.Info("connector saved",
		zap.String("connector_id", connector.ID),
		zap.String("datasource", connector.Datasource),
		zap.String("subproduct", connector.Subproduct),
		zap.Strings("config_keys", configKeys(config)),
		zap.Bool("sealed", s.sealer.Enabled()),
	)
	connector.Config = config
	return &connector, nil
}

// Resolve loads a connector with its config decrypted.
func (s *ConnectorService) Resolve(ctx context.Context, id string) (*models.Connector, error) {
	c, err := s.store.GetConnector(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConnectorNotFound
		}
		return nil, fmt.Errorf("failed to load connector: %w", err)
	}
	config, err := s.sealer.Open(c.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectorUnsealing, err)
	}
	c.Config = config
	return c, nil
}

// Fetch runs the connector's source once. ErrUnsupportedSource means no source exists for
// the stored datasource.
func (s *ConnectorService) Fetch(ctx context.Context, c *models.Connector) (sources.Source, sources.Result, error) {
	kind, err := sources.ParseKind(c.Datasource)
	if err != nil {
		return nil, sources.Result{}, ErrUnsupportedSource
	}
	src, ok := s.registry.Get(kind)
	if !ok {
		return nil, sources.Result{}, ErrUnsupportedSource
	}

	start := time.Now()
	res := src.Fetch(ctx, c.Config, c.Subproduct)
	elapsed := time.Since(start)
	s.metrics.ObserveFetch(string(kind), res.OK(), elapsed)

	fields := []zap.Field{
		zap.String("connector_id", c.ID),
		zap.String("datasource", string(kind)),
		zap.String("subproduct", c.Subproduct),
		zap.Duration("elapsed", elapsed),
	}
	if reason, failed := res.ErrorReason(); failed {
		s.logger.Warn("datasource fetch returned an error", append(fields, zap.String("reason", reason))...)
	} else {
		s.logger.Debug("datasource fetch succeeded", append(fields, zap.Int("bytes", len(res.Data)))...)
	}
	return src, res, nil
}

// TestConnection fetches through the connector and returns the raw result. A datasource
// without a source yields {"error": "Unsupported datasource"} rather than a Go error.
func (s *ConnectorService) TestConnection(ctx context.Context, id string) (sources.Result, error) {
	c, err := s.Resolve(ctx, id)
	if err != nil {
		return sources.Result{}, err
	}
	_, res, err := s.Fetch(ctx, c)
	if errors.Is(err, ErrUnsupportedSource) {
		return sources.Failed("Unsupported datasource"), nil
	}
	return res, err
}

// configKeys lists the top-level keys of a config for logging without its values.
func configKeys(config json.RawMessage) []string {
	var keys []string
	_ = jsonparser.ObjectEach(config, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		keys = append(keys, string(key))
		return nil
	})
	return keys
}
