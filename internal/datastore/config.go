package datastore

import (
	"context"

	"whiteboard/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableConfig(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Config)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	var config models.Config
	err := s.catalog().NewSelect().Model(&config).Where("key = ?", key).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &config, nil
}

func (s *PostgresStore) UpsertConfig(ctx context.Context, config *models.Config) error {
	_, err := s.db.NewInsert().Model(config).On("CONFLICT (key) DO UPDATE").Set("value = EXCLUDED.value").Exec(ctx)
	return err
}
