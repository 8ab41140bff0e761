package models

import "github.com/google/uuid"

type LeaderboardItem struct {
	Username string    `json:"username"`
	UserID   uuid.UUID `json:"user_id"`
	Score    float64   `json:"score"`
	Rank     int       `json:"rank,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard []*LeaderboardItem `json:"leaderboard"`
	Me          *LeaderboardItem   `json:"me"`
}
