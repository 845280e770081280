package services

import (
	"time"

	"github.com/yeremiapane/table-loyalty/models"
	"gorm.io/gorm"
)

// LedgerService is the read side of the transaction ledger. Entries are
// appended only by PointsService, inside the mutation's own database
// transaction; this service never writes.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// DailyStats aggregates one calendar day of ledger activity.
type DailyStats struct {
	Date              string `json:"date"`
	TotalTransactions int    `json:"total_transactions"`
	PointsEarned      int    `json:"points_earned"`
	PointsRedeemed    int    `json:"points_redeemed"`
	PointsAdjusted    int    `json:"points_adjusted"`
	NetPoints         int    `json:"net_points"`
}

// TypeStats is the per-type breakdown used by the cashier stats view.
type TypeStats struct {
	Type             string `json:"type"`
	TotalPoints      int    `json:"total_points"`
	TransactionCount int    `json:"transaction_count"`
}

// TransactionFilter narrows the paginated List query. Zero values mean
// no filtering on that dimension.
type TransactionFilter struct {
	Type    string
	TableID uint
	UserID  uint
}

// HistoryForTable returns a table's entries, most recent first, with
// the acting user resolved for display.
func (s *LedgerService) HistoryForTable(tableID uint, limit int) ([]models.PointTransaction, error) {
	if limit < 1 {
		limit = 10
	}

	var entries []models.PointTransaction
	err := s.db.
		Preload("Actor").
		Where("table_id = ?", tableID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UserActivity returns the most recent entries recorded by one user,
// with the table resolved for display.
func (s *LedgerService) UserActivity(userID uint, limit int) ([]models.PointTransaction, error) {
	if limit < 1 {
		limit = 20
	}

	var entries []models.PointTransaction
	err := s.db.
		Preload("Table").
		Where("assigned_by = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DailyStats sums the ledger over the 00:00:00–23:59:59.999 window of
// the given date, in the date's location.
func (s *LedgerService) DailyStats(date time.Time) (*DailyStats, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24*time.Hour - time.Millisecond)

	var rows []TypeStats
	err := s.db.Model(&models.PointTransaction{}).
		Select("type, SUM(points) AS total_points, COUNT(*) AS transaction_count").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &DailyStats{Date: start.Format("2006-01-02")}
	for _, row := range rows {
		stats.TotalTransactions += row.TransactionCount
		switch row.Type {
		case models.TransactionEarned:
			stats.PointsEarned = row.TotalPoints
		case models.TransactionRedeemed:
			stats.PointsRedeemed = row.TotalPoints
		case models.TransactionAdjustment:
			stats.PointsAdjusted = row.TotalPoints
		}
	}
	stats.NetPoints = stats.PointsEarned - stats.PointsRedeemed
	return stats, nil
}

// UserStats returns the per-type totals for one cashier plus their
// recent activity.
func (s *LedgerService) UserStats(userID uint, recentLimit int) ([]TypeStats, []models.PointTransaction, error) {
	var rows []TypeStats
	err := s.db.Model(&models.PointTransaction{}).
		Select("type, SUM(points) AS total_points, COUNT(*) AS transaction_count").
		Where("assigned_by = ?", userID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	recent, err := s.UserActivity(userID, recentLimit)
	if err != nil {
		return nil, nil, err
	}
	return rows, recent, nil
}

// List returns a filtered, paginated window of the ledger, most recent
// first, with table and actor resolved.
func (s *LedgerService) List(filter TransactionFilter, page, limit int) ([]models.PointTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := s.db.Model(&models.PointTransaction{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.TableID != 0 {
		query = query.Where("table_id = ?", filter.TableID)
	}
	if filter.UserID != 0 {
		query = query.Where("assigned_by = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.PointTransaction
	err := query.
		Preload("Table").
		Preload("Actor").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
