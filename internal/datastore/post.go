package datastore

import (
	"context"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableBoard(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Board)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTablePost(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Post)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	// one post per author per calendar day
	_, err = db.NewCreateIndex().Model((*models.Post)(nil)).Index("index_posts_user_id_post_day").IfNotExists().Unique().Column("user_id", "post_day").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Post)(nil)).Index("index_posts_board_id_updated_at").IfNotExists().Column("board_id", "updated_at").Exec(ctx)
	return err
}

func (s *PostgresStore) InsertBoard(ctx context.Context, board *models.Board) error {
	_, err := s.db.NewInsert().Model(board).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	var board models.Board
	err := s.catalog().NewSelect().Model(&board).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &board, nil
}

func (s *PostgresStore) ListBoards(ctx context.Context) ([]*models.Board, error) {
	var boards []*models.Board
	err := s.catalog().NewSelect().Model(&boards).OrderExpr("name ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return boards, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := s.db.NewSelect().Model(&post).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *PostgresStore) InsertPost(ctx context.Context, post *models.Post) (bool, error) {
	return affected(s.db.NewInsert().
		Model(post).
		On("CONFLICT (user_id, post_day) DO NOTHING").
		Exec(ctx))
}

func (s *PostgresStore) UpdatePostContent(ctx context.Context, post *models.Post) error {
	_, err := s.db.NewUpdate().Model(post).Column("content", "updated_at").WherePK().Exec(ctx)
	return err
}

func (s *PostgresStore) BumpPost(ctx context.Context, postID uuid.UUID, userID uuid.UUID, at time.Time) (*models.Post, error) {
	var post models.Post
	ok, err := affected(s.db.NewUpdate().
		Model(&post).
		Set("push_count = push_count + 1").
		Set("updated_at = ?", at).
		Set("last_bumped_by = ?", userID).
		Where("id = ?", postID).
		Returning("*").
		Exec(ctx))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (s *PostgresStore) CountPostsByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.db.NewSelect().Model((*models.Post)(nil)).Where("user_id = ?", userID).Count(ctx)
}

func (s *PostgresStore) HasPostOnDay(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	return s.db.NewSelect().
		Model((*models.Post)(nil)).
		Where("user_id = ? AND post_day = ?", userID, dateArg(day)).
		Exists(ctx)
}

func (s *PostgresStore) ListPostsByBoard(ctx context.Context, boardID string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.db.NewSelect().
		Model(&posts).
		Where("board_id = ?", boardID).
		OrderExpr("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

type postCount struct {
	PostID uuid.UUID `bun:"post_id"`
	Count  int       `bun:"count"`
}

func (s *PostgresStore) ListPostStats(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]models.PostStats, error) {
	stats := make(map[uuid.UUID]models.PostStats, len(postIDs))
	if len(postIDs) == 0 {
		return stats, nil
	}

	var comments []postCount
	err := s.db.NewSelect().
		TableExpr("comments").
		ColumnExpr("post_id").
		ColumnExpr("count(*) AS count").
		Where("post_id IN (?)", bun.In(postIDs)).
		GroupExpr("post_id").
		Scan(ctx, &comments)
	if err != nil {
		return nil, err
	}

	var thumbs []postCount
	err = s.db.NewSelect().
		TableExpr("thumbs").
		ColumnExpr("post_id").
		ColumnExpr("count(*) AS count").
		Where("post_id IN (?)", bun.In(postIDs)).
		GroupExpr("post_id").
		Scan(ctx, &thumbs)
	if err != nil {
		return nil, err
	}

	var thumbed []uuid.UUID
	err = s.db.NewSelect().
		TableExpr("thumbs").
		ColumnExpr("post_id").
		Where("user_id = ?", viewer).
		Where("post_id IN (?)", bun.In(postIDs)).
		Scan(ctx, &thumbed)
	if err != nil {
		return nil, err
	}

	for _, id := range postIDs {
		stats[id] = models.PostStats{}
	}
	for _, row := range comments {
		stat := stats[row.PostID]
		stat.CommentCount = row.Count
		stats[row.PostID] = stat
	}
	for _, row := range thumbs {
		stat := stats[row.PostID]
		stat.ThumbCount = row.Count
		stats[row.PostID] = stat
	}
	for _, id := range thumbed {
		stat := stats[id]
		stat.UserHasThumbed = true
		stats[id] = stat
	}
	return stats, nil
}
