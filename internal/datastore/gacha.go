package datastore

import (
	"context"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableGachaCollection(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GachaCollection)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTableCollectionItem(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.CollectionItem)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return addCheckConstraint(ctx, db, "collection_items", "collection_items_positive_weight", "weight > 0")
}

func CreateTableGachaPull(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GachaPull)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GachaPull)(nil)).Index("index_gacha_pull_records_user_id_pull_time").IfNotExists().Column("user_id", "pull_time").Exec(ctx)
	return err
}

func (s *PostgresStore) InsertCollection(ctx context.Context, collection *models.GachaCollection) error {
	_, err := s.db.NewInsert().Model(collection).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) GetCollection(ctx context.Context, id string) (*models.GachaCollection, error) {
	var collection models.GachaCollection
	err := s.db.NewSelect().Model(&collection).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &collection, nil
}

func (s *PostgresStore) ListCollections(ctx context.Context) ([]*models.GachaCollection, error) {
	var collections []*models.GachaCollection
	err := s.db.NewSelect().Model(&collections).OrderExpr("start_date DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *PostgresStore) ListActiveCollections(ctx context.Context, at time.Time) ([]*models.GachaCollection, error) {
	var collections []*models.GachaCollection
	err := s.catalog().NewSelect().
		Model(&collections).
		Where("is_active").
		Where("start_date <= ?", at).
		Where("end_date IS NULL OR end_date > ?", at).
		OrderExpr("start_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *PostgresStore) UpdateCollectionActive(ctx context.Context, id string, active bool) error {
	_, err := s.db.NewUpdate().
		Model((*models.GachaCollection)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (s *PostgresStore) InsertCollectionItem(ctx context.Context, item *models.CollectionItem) error {
	_, err := s.db.NewInsert().Model(item).On("CONFLICT (collection_id, flair_id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) ListCollectionItems(ctx context.Context, collectionID string) ([]*models.CollectionItem, error) {
	var items []*models.CollectionItem
	err := s.catalog().NewSelect().
		Model(&items).
		Relation("Flair").
		Where("?TableAlias.collection_id = ?", collectionID).
		OrderExpr("?TableAlias.flair_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) InsertGachaPull(ctx context.Context, pull *models.GachaPull) error {
	_, err := s.db.NewInsert().Model(pull).Exec(ctx)
	return err
}

func (s *PostgresStore) ListGachaPulls(ctx context.Context, userID uuid.UUID, limit int) ([]*models.GachaPull, error) {
	var pulls []*models.GachaPull
	err := s.db.NewSelect().
		Model(&pulls).
		Relation("Flair").
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.pull_time DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return pulls, nil
}
