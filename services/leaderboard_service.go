package services

import (
	"github.com/yeremiapane/table-loyalty/models"
	"gorm.io/gorm"
)

// Medals for the top three positions.
var medals = []string{"🥇", "🥈", "🥉"}

// LeaderboardEntry is one row of the standings: the table plus its
// 1-based position and medal, if any.
type LeaderboardEntry struct {
	models.Table
	Position int    `json:"position"`
	Medal    string `json:"medal,omitempty"`
}

// LeaderboardService derives standings from the table registry. Only
// active tables compete. Ordering is points descending with ties broken
// by earlier last_points_update: among equal scores, the table that
// reached that score first ranks higher.
type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// TopN returns the first limit entries of the full ordering. The id
// tiebreaker only matters when two tables share both points and update
// time; it keeps the ordering total so repeated calls agree.
func (s *LeaderboardService) TopN(limit int) ([]LeaderboardEntry, error) {
	if limit < 1 {
		limit = 20
	}

	var tables []models.Table
	err := s.db.
		Where("is_active = ?", true).
		Order("points DESC, last_points_update ASC, id ASC").
		Limit(limit).
		Find(&tables).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(tables))
	for i, table := range tables {
		entries[i] = LeaderboardEntry{
			Table:    table,
			Position: i + 1,
			Medal:    MedalForPosition(i + 1),
		}
	}
	return entries, nil
}

// Rank computes one table's position without materializing the full
// ordering: 1 + the number of active tables strictly better (more
// points, or equal points reached earlier).
func (s *LeaderboardService) Rank(table *models.Table) (*LeaderboardEntry, error) {
	var better int64
	err := s.db.Model(&models.Table{}).
		Where("is_active = ?", true).
		Where("points > ? OR (points = ? AND last_points_update < ?)",
			table.Points, table.Points, table.LastPointsUpdate).
		Count(&better).Error
	if err != nil {
		return nil, err
	}

	position := int(better) + 1
	return &LeaderboardEntry{
		Table:    *table,
		Position: position,
		Medal:    MedalForPosition(position),
	}, nil
}

// MedalForPosition returns 🥇🥈🥉 for positions 1–3 and "" otherwise.
func MedalForPosition(position int) string {
	if position >= 1 && position <= len(medals) {
		return medals[position-1]
	}
	return ""
}
