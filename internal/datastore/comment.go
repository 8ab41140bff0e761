package datastore

import (
	"context"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableComment(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Comment)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Comment)(nil)).Index("index_comments_post_id_created_at").IfNotExists().Column("post_id", "created_at").Exec(ctx)
	return err
}

func (s *PostgresStore) InsertComment(ctx context.Context, comment *models.Comment) error {
	_, err := s.db.NewInsert().Model(comment).Exec(ctx)
	return err
}

func (s *PostgresStore) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.NewSelect().Model(&comment).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := s.db.NewSelect().Model(&comments).Where("post_id = ?", postID).OrderExpr("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *PostgresStore) CountComments(ctx context.Context, postID uuid.UUID) (int, error) {
	return s.db.NewSelect().Model((*models.Comment)(nil)).Where("post_id = ?", postID).Count(ctx)
}
