package redis_store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

func dbKeyLeaderboard(name string) string {
	return fmt.Sprintf("leaderboard:%s", strings.ToLower(name))
}

func dbKeyLeaderboardBuilding(name string) string {
	return fmt.Sprintf("leaderboard:%s:building", strings.ToLower(name))
}

func dbKeyLeaderboardMeta(name string) string {
	return fmt.Sprintf("leaderboard:%s:meta", strings.ToLower(name))
}

// LeaderboardMeta describes the last full rebuild of a leaderboard.
type LeaderboardMeta struct {
	BuiltAt time.Time `msgpack:"built_at" json:"built_at"`
	Entries int       `msgpack:"entries" json:"entries"`
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  v.Score,
		Member: v.UserID.String(),
	}).Err()

	if err != nil {
		return nil, err
	}

	return v, nil
}

// ReplaceLeaderboard builds the new set under a side key and renames it over
// the live one, so readers never see a half-built board.
func ReplaceLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, items []*models.LeaderboardItem) error {
	if len(items) == 0 {
		return ClearLeaderboard(ctx, cmd, name)
	}

	members := make([]redis.Z, 0, len(items))
	for _, item := range items {
		members = append(members, redis.Z{Score: item.Score, Member: item.UserID.String()})
	}

	building := dbKeyLeaderboardBuilding(name)
	_, err := cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, building)
		pipe.ZAdd(ctx, building, members...)
		pipe.Rename(ctx, building, dbKeyLeaderboard(name))
		return nil
	})
	return err
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	err := cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
	if err != nil {
		return err
	}

	return nil
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, num int) ([]*models.LeaderboardItem, error) {
	if num <= 0 {
		return []*models.LeaderboardItem{}, nil
	}

	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*models.LeaderboardItem, 0, len(items))
	for i, item := range items {
		member, _ := item.Member.(string)
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		results = append(results, &models.LeaderboardItem{
			UserID: id,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

// GetRankWithScore returns redis.Nil when the user is not on the board.
func GetRankWithScore(ctx context.Context, cmd redis.Cmdable, name string, userID uuid.UUID) (redis.RankScore, error) {
	rank, err := cmd.ZRevRankWithScore(ctx, dbKeyLeaderboard(name), userID.String()).Result()
	if err != nil {
		return redis.RankScore{}, err
	}

	return rank, nil
}

func EncodeLeaderboardMeta(meta *LeaderboardMeta) ([]byte, error) {
	return msgpack.Marshal(meta)
}

func DecodeLeaderboardMeta(b []byte) (*LeaderboardMeta, error) {
	var meta LeaderboardMeta
	if err := msgpack.Unmarshal(b, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func SetLeaderboardMeta(ctx context.Context, cmd redis.Cmdable, name string, meta *LeaderboardMeta) error {
	b, err := EncodeLeaderboardMeta(meta)
	if err != nil {
		return err
	}
	return cmd.Set(ctx, dbKeyLeaderboardMeta(name), b, 0).Err()
}

// GetLeaderboardMeta returns nil without error when the board was never built.
func GetLeaderboardMeta(ctx context.Context, cmd redis.Cmdable, name string) (*LeaderboardMeta, error) {
	b, err := cmd.Get(ctx, dbKeyLeaderboardMeta(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeLeaderboardMeta(b)
}
