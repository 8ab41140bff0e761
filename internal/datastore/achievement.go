package datastore

import (
	"context"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableAchievementDefinition(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.AchievementDefinition)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.AchievementDefinition)(nil)).Index("index_achievement_definitions_trigger").IfNotExists().Column("trigger").Exec(ctx)
	return err
}

func CreateTableUserAchievement(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserAchievement)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return addCheckConstraint(ctx, db, "user_achievements", "user_achievements_claim_after_completion", "NOT reward_claimed OR completed")
}

func (s *PostgresStore) InsertAchievementDefinition(ctx context.Context, definition *models.AchievementDefinition) error {
	_, err := s.db.NewInsert().Model(definition).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) GetAchievementDefinition(ctx context.Context, id string) (*models.AchievementDefinition, error) {
	var definition models.AchievementDefinition
	err := s.catalog().NewSelect().Model(&definition).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &definition, nil
}

func (s *PostgresStore) ListAchievementDefinitions(ctx context.Context) ([]*models.AchievementDefinition, error) {
	var definitions []*models.AchievementDefinition
	err := s.catalog().NewSelect().
		Model(&definitions).
		OrderExpr("category ASC, required_progress ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return definitions, nil
}

func (s *PostgresStore) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error) {
	var achievements []*models.UserAchievement
	err := s.db.NewSelect().Model(&achievements).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

func (s *PostgresStore) LockUserAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*models.UserAchievement, error) {
	var achievement models.UserAchievement
	err := s.db.NewSelect().
		Model(&achievement).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &achievement, nil
}

func (s *PostgresStore) InsertUserAchievement(ctx context.Context, achievement *models.UserAchievement) (bool, error) {
	return affected(s.db.NewInsert().
		Model(achievement).
		On("CONFLICT (user_id, achievement_id) DO NOTHING").
		Exec(ctx))
}

func (s *PostgresStore) UpdateUserAchievement(ctx context.Context, achievement *models.UserAchievement) error {
	_, err := s.db.NewUpdate().
		Model(achievement).
		Column("current_progress", "completed", "completed_at", "reward_claimed", "claimed_at").
		WherePK().
		Exec(ctx)
	return err
}
