package datastore

import (
	"context"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableDailyActivity(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyActivity)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTableStreakState(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.StreakState)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.StreakState)(nil)).Index("index_streak_states_streak_days").IfNotExists().Column("streak_days").Exec(ctx)
	return err
}

func (s *PostgresStore) GetDailyActivity(ctx context.Context, userID uuid.UUID, day time.Time) (*models.DailyActivity, error) {
	var activity models.DailyActivity
	err := s.db.NewSelect().Model(&activity).Where("user_id = ? AND activity_date = ?", userID, dateArg(day)).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &activity, nil
}

func (s *PostgresStore) LockDailyActivity(ctx context.Context, userID uuid.UUID, day time.Time) (*models.DailyActivity, error) {
	_, err := s.db.NewInsert().
		Model(&models.DailyActivity{UserID: userID, ActivityDate: day}).
		On("CONFLICT (user_id, activity_date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	var activity models.DailyActivity
	err = s.db.NewSelect().
		Model(&activity).
		Where("user_id = ? AND activity_date = ?", userID, dateArg(day)).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &activity, nil
}

func (s *PostgresStore) UpdateDailyActivity(ctx context.Context, activity *models.DailyActivity) error {
	activity.UpdatedAt = time.Now()
	_, err := s.db.NewUpdate().
		Model(activity).
		Column("check_in", "posted", "commented", "liked", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

func (s *PostgresStore) GetStreakState(ctx context.Context, userID uuid.UUID) (*models.StreakState, error) {
	var streak models.StreakState
	err := s.db.NewSelect().Model(&streak).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &streak, nil
}

func (s *PostgresStore) LockStreakState(ctx context.Context, userID uuid.UUID) (*models.StreakState, error) {
	_, err := s.db.NewInsert().Model(&models.StreakState{UserID: userID}).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	var streak models.StreakState
	err = s.db.NewSelect().Model(&streak).Where("user_id = ?", userID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &streak, nil
}

func (s *PostgresStore) UpdateStreakState(ctx context.Context, streak *models.StreakState) error {
	streak.UpdatedAt = time.Now()
	_, err := s.db.NewUpdate().Model(streak).Column("streak_days", "last_check_in", "updated_at").WherePK().Exec(ctx)
	return err
}

func (s *PostgresStore) ListTopStreaks(ctx context.Context, since time.Time, limit int) ([]*models.StreakState, error) {
	var streaks []*models.StreakState
	err := s.db.NewSelect().
		Model(&streaks).
		Where("streak_days > 0").
		Where("last_check_in >= ?", dateArg(since)).
		OrderExpr("streak_days DESC, updated_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return streaks, nil
}
