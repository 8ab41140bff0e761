package datastore

import (
	"context"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableProfile(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Profile)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Profile)(nil)).Index("index_profiles_username").IfNotExists().Column("username").Exec(ctx)
	return err
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.NewSelect().Model(&profile).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

func (s *PostgresStore) InsertProfile(ctx context.Context, profile *models.Profile) error {
	_, err := s.db.NewInsert().Model(profile).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}
