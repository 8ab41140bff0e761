package datastore

import (
	"context"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableThumb(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Thumb)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Thumb)(nil)).Index("index_thumbs_user_id_post_id").IfNotExists().Unique().Column("user_id", "post_id").Where("post_id IS NOT NULL").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Thumb)(nil)).Index("index_thumbs_user_id_comment_id").IfNotExists().Unique().Column("user_id", "comment_id").Where("comment_id IS NOT NULL").Exec(ctx)
	if err != nil {
		return err
	}

	return addCheckConstraint(ctx, db, "thumbs", "thumbs_single_target", "num_nonnulls(post_id, comment_id) = 1")
}

func whereThumbTarget(q *bun.SelectQuery, target models.ThumbTarget) *bun.SelectQuery {
	if target.PostID != nil {
		return q.Where("post_id = ?", *target.PostID)
	}
	return q.Where("comment_id = ?", *target.CommentID)
}

func (s *PostgresStore) FindThumb(ctx context.Context, userID uuid.UUID, target models.ThumbTarget) (*models.Thumb, error) {
	var thumb models.Thumb
	q := s.db.NewSelect().Model(&thumb).Where("user_id = ?", userID)
	err := whereThumbTarget(q, target).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &thumb, nil
}

func (s *PostgresStore) InsertThumb(ctx context.Context, thumb *models.Thumb) (bool, error) {
	return affected(s.db.NewInsert().Model(thumb).On("CONFLICT DO NOTHING").Exec(ctx))
}

func (s *PostgresStore) DeleteThumb(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.NewDelete().Model((*models.Thumb)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (s *PostgresStore) CountThumbs(ctx context.Context, target models.ThumbTarget) (int, error) {
	q := s.db.NewSelect().Model((*models.Thumb)(nil))
	return whereThumbTarget(q, target).Count(ctx)
}
