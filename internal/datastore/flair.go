package datastore

import (
	"context"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableFlairItem(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.FlairItem)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTableInventoryItem(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.InventoryItem)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.InventoryItem)(nil)).Index("index_inventory_items_user_id_flair_id").IfNotExists().Column("user_id", "flair_id").Exec(ctx)
	return err
}

func CreateTablePostFlair(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.PostFlair)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PostFlair)(nil)).Index("index_post_flair_applications_post_id_flair_id").IfNotExists().Unique().Column("post_id", "flair_id").Exec(ctx)
	return err
}

func (s *PostgresStore) InsertFlairItem(ctx context.Context, item *models.FlairItem) error {
	_, err := s.db.NewInsert().Model(item).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) GetFlairItem(ctx context.Context, id string) (*models.FlairItem, error) {
	var item models.FlairItem
	err := s.catalog().NewSelect().Model(&item).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (s *PostgresStore) ListFlairItems(ctx context.Context) ([]*models.FlairItem, error) {
	var items []*models.FlairItem
	err := s.catalog().NewSelect().Model(&items).OrderExpr("type ASC, id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) InsertInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	_, err := s.db.NewInsert().Model(item).Exec(ctx)
	return err
}

func (s *PostgresStore) CountInventoryItems(ctx context.Context, userID uuid.UUID, flairID string) (int, error) {
	return s.db.NewSelect().
		Model((*models.InventoryItem)(nil)).
		Where("user_id = ? AND flair_id = ?", userID, flairID).
		Count(ctx)
}

func (s *PostgresStore) ListInventoryItems(ctx context.Context, userID uuid.UUID) ([]*models.InventoryItem, error) {
	var items []*models.InventoryItem
	err := s.db.NewSelect().
		Model(&items).
		Relation("Flair").
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.acquired_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) InsertPostFlair(ctx context.Context, application *models.PostFlair) (bool, error) {
	return affected(s.db.NewInsert().
		Model(application).
		On("CONFLICT (post_id, flair_id) DO NOTHING").
		Exec(ctx))
}

func (s *PostgresStore) DeletePostFlair(ctx context.Context, postID uuid.UUID, flairID string) error {
	_, err := s.db.NewDelete().
		Model((*models.PostFlair)(nil)).
		Where("post_id = ? AND flair_id = ?", postID, flairID).
		Exec(ctx)
	return err
}

func (s *PostgresStore) ListPostFlairs(ctx context.Context, postIDs ...uuid.UUID) ([]*models.PostFlair, error) {
	var applications []*models.PostFlair
	if len(postIDs) == 0 {
		return applications, nil
	}

	err := s.db.NewSelect().
		Model(&applications).
		Relation("Flair").
		Where("?TableAlias.post_id IN (?)", bun.In(postIDs)).
		OrderExpr("?TableAlias.applied_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (s *PostgresStore) ListPostFlairsByOwner(ctx context.Context, userID uuid.UUID) ([]*models.PostFlair, error) {
	var applications []*models.PostFlair
	err := s.db.NewSelect().
		Model(&applications).
		Join("JOIN posts AS p ON p.id = ?TableAlias.post_id").
		Where("p.user_id = ?", userID).
		OrderExpr("?TableAlias.applied_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return applications, nil
}
