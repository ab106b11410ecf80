package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
)

const upsertConnector = `-- name: UpsertConnector :exec
INSERT INTO connectors (id, username, datasource, subproduct, config_json)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    username = EXCLUDED.username,
    datasource = EXCLUDED.datasource,
    subproduct = EXCLUDED.subproduct,
    config_json = EXCLUDED.config_json;
`

// UpsertConnector replaces the connector row with the given id.
func (s *PostgresStore) UpsertConnector(ctx context.Context, c models.Connector) error {
	_, err := s.db.Exec(ctx, upsertConnector, c.ID, c.Username, c.Datasource, c.Subproduct, string(c.Config))
	if err != nil {
		s.logPgError("UpsertConnector", err)
		return fmt.Errorf("database error saving connector: %w", err)
	}
	s.logger.Debug("connector saved", zap.String("connector_id", c.ID), zap.String("datasource", c.Datasource))
	return nil
}

const getConnector = `-- name: GetConnector :one
SELECT id, COALESCE(username, ''), COALESCE(datasource, ''), COALESCE(subproduct, ''), COALESCE(config_json, '{}')
FROM connectors
WHERE id = $1;
`

// GetConnector returns store.ErrNotFound when no connector has the given id.
func (s *PostgresStore) GetConnector(ctx context.Context, id string) (*models.Connector, error) {
	var (
		c      models.Connector
		config string
	)
	err := s.db.QueryRow(ctx, getConnector, id).Scan(&c.ID, &c.Username, &c.Datasource, &c.Subproduct, &config)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.logPgError("GetConnector", err)
		return nil, fmt.Errorf("database error fetching connector: %w", err)
	}
	c.Config = []byte(config)
	return &c, nil
}
