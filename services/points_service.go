package services

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/yeremiapane/table-loyalty/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultMaxPointsPerTransaction caps a single earn when no explicit
// bound is configured.
const DefaultMaxPointsPerTransaction = 1000

// PointsService is the only path allowed to change a table's balance.
// Every mutation runs inside one database transaction that locks the
// table row, writes the new balance and appends exactly one ledger
// entry; on any failure nothing is written.
type PointsService struct {
	db        *gorm.DB
	maxPoints int
}

func NewPointsService(db *gorm.DB, maxPointsPerTransaction int) *PointsService {
	if maxPointsPerTransaction < 1 {
		maxPointsPerTransaction = DefaultMaxPointsPerTransaction
	}
	return &PointsService{db: db, maxPoints: maxPointsPerTransaction}
}

// MaxPointsPerTransaction returns the configured earn cap.
func (s *PointsService) MaxPointsPerTransaction() int {
	return s.maxPoints
}

// Earn adds points to a table and records an EARNED ledger entry.
func (s *PointsService) Earn(tableID uint, points int, actorID uint, description string) (*models.Table, *models.PointTransaction, error) {
	return s.earn("id = ?", tableID, points, actorID, description)
}

// EarnByQR is Earn with the table identified by its scanned QR code.
func (s *PointsService) EarnByQR(qrCode string, points int, actorID uint, description string) (*models.Table, *models.PointTransaction, error) {
	return s.earn("qr_code = ?", models.NormalizeQR(qrCode), points, actorID, description)
}

// Redeem subtracts points from a table and records a REDEEMED ledger
// entry. The balance can never go below zero: a request for more than
// the table holds fails with InsufficientBalanceError and writes
// nothing.
func (s *PointsService) Redeem(tableID uint, points int, actorID uint, description string) (*models.Table, *models.PointTransaction, error) {
	return s.redeem("id = ?", tableID, points, actorID, description)
}

// RedeemByQR is Redeem with the table identified by its QR code.
func (s *PointsService) RedeemByQR(qrCode string, points int, actorID uint, description string) (*models.Table, *models.PointTransaction, error) {
	return s.redeem("qr_code = ?", models.NormalizeQR(qrCode), points, actorID, description)
}

func (s *PointsService) earn(cond string, arg interface{}, points int, actorID uint, description string) (*models.Table, *models.PointTransaction, error) {
	if points < 1 || points > s.maxPoints {
		return nil, nil, &ValidationError{
			Field:  "points",
			Reason: fmt.Sprintf("must be between 1 and %d", s.maxPoints),
		}
	}
	if err := validateDescription(description); err != nil {
		return nil, nil, err
	}

	var (
		table models.Table
		entry models.PointTransaction
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := findActor(tx, actorID)
		if err != nil {
			return err
		}
		if err := lockActiveTable(tx, &table, cond, arg); err != nil {
			return err
		}

		previous := table.Points
		now := time.Now()

		if err := tx.Model(&table).Updates(map[string]interface{}{
			"points":             previous + points,
			"last_points_update": now,
		}).Error; err != nil {
			return err
		}
		table.Points = previous + points
		table.LastPointsUpdate = now

		if description == "" {
			description = fmt.Sprintf("Points awarded by %s", actor.Name)
		}
		entry = models.PointTransaction{
			TableID:        table.ID,
			AssignedBy:     actorID,
			Points:         points,
			Type:           models.TransactionEarned,
			Description:    description,
			PreviousPoints: previous,
			NewPoints:      previous + points,
			Timestamp:      now,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &table, &entry, nil
}

func (s *PointsService) redeem(cond string, arg interface{}, points int, actorID uint, description string) (*models.Table, *models.PointTransaction, error) {
	if points < 1 {
		return nil, nil, &ValidationError{Field: "points", Reason: "must be at least 1"}
	}
	if err := validateDescription(description); err != nil {
		return nil, nil, err
	}

	var (
		table models.Table
		entry models.PointTransaction
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := findActor(tx, actorID)
		if err != nil {
			return err
		}
		if err := lockActiveTable(tx, &table, cond, arg); err != nil {
			return err
		}

		if table.Points < points {
			return &InsufficientBalanceError{Available: table.Points, Requested: points}
		}

		previous := table.Points
		now := time.Now()

		// Guarded update: the points >= ? condition re-checks the
		// balance at write time, so even a store that ignores the row
		// lock cannot let two redeems overdraw the table.
		res := tx.Model(&models.Table{}).
			Where("id = ? AND points >= ?", table.ID, points).
			Updates(map[string]interface{}{
				"points":             gorm.Expr("points - ?", points),
				"last_points_update": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &InsufficientBalanceError{Available: previous, Requested: points}
		}

		table.Points = previous - points
		table.LastPointsUpdate = now

		if description == "" {
			description = fmt.Sprintf("Points redeemed by %s", actor.Name)
		}
		entry = models.PointTransaction{
			TableID:        table.ID,
			AssignedBy:     actorID,
			Points:         points,
			Type:           models.TransactionRedeemed,
			Description:    description,
			PreviousPoints: previous,
			NewPoints:      previous - points,
			Timestamp:      now,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &table, &entry, nil
}

// Reset zeroes a table's balance and records an ADJUSTMENT entry whose
// points field carries the magnitude of the change. Role enforcement
// (admin only) happens at the route; the service trusts the actor id.
func (s *PointsService) Reset(tableID uint, actorID uint, reason string) (*models.Table, *models.PointTransaction, error) {
	if err := validateDescription(reason); err != nil {
		return nil, nil, err
	}

	var (
		table models.Table
		entry models.PointTransaction
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findActor(tx, actorID); err != nil {
			return err
		}
		if err := lockActiveTable(tx, &table, "id = ?", tableID); err != nil {
			return err
		}

		previous := table.Points
		if previous == 0 {
			return &ValidationError{Field: "points", Reason: "already zero"}
		}
		now := time.Now()

		if err := tx.Model(&table).Updates(map[string]interface{}{
			"points":             0,
			"last_points_update": now,
		}).Error; err != nil {
			return err
		}
		table.Points = 0
		table.LastPointsUpdate = now

		if reason == "" {
			reason = "no reason given"
		}
		entry = models.PointTransaction{
			TableID:        table.ID,
			AssignedBy:     actorID,
			Points:         previous,
			Type:           models.TransactionAdjustment,
			Description:    fmt.Sprintf("Points reset: %s", reason),
			PreviousPoints: previous,
			NewPoints:      0,
			Timestamp:      now,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &table, &entry, nil
}

// lockActiveTable fetches one active table under SELECT ... FOR UPDATE
// so concurrent mutations against the same table serialize. SQLite has
// no FOR UPDATE syntax and a single writer; there the guarded balance
// update is the only protection needed.
func lockActiveTable(tx *gorm.DB, table *models.Table, cond string, arg interface{}) error {
	query := tx
	if tx.Dialector.Name() != "sqlite" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.
		Where(cond, arg).
		Where("is_active = ?", true).
		First(table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTableNotFound
	}
	return err
}

func findActor(tx *gorm.DB, actorID uint) (*models.User, error) {
	var actor models.User
	if err := tx.First(&actor, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &actor, nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > models.DescriptionMaxLen {
		return &ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("must be at most %d characters", models.DescriptionMaxLen),
		}
	}
	return nil
}
