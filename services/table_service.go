package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yeremiapane/table-loyalty/models"
	"gorm.io/gorm"
)

// TableService is the table registry: identity, QR mapping and
// lifecycle. Point balances are owned by PointsService; the registry
// never touches them.
type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

// FindByQR looks up an active table by its scanned QR payload. Codes
// are stored uppercase, so the lookup normalizes first.
func (s *TableService) FindByQR(code string) (*models.Table, error) {
	var table models.Table
	err := s.db.Where("qr_code = ? AND is_active = ?", models.NormalizeQR(code), true).First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

// GetByID returns a table regardless of active state. Callers that only
// want live tables (leaderboard, QR lookup) go through other paths.
func (s *TableService) GetByID(id uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

// Create provisions a new table. The QR code is derived from the table
// number and can never be reassigned later, even after deactivation.
func (s *TableService) Create(tableNumber uint, name string, createdBy uint) (*models.Table, error) {
	if tableNumber == 0 {
		return nil, &ValidationError{Field: "table_number", Reason: "must be a positive integer"}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Table %d", tableNumber)
	}
	if utf8.RuneCountInString(name) > models.TableNameMaxLen {
		return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", models.TableNameMaxLen)}
	}

	// The unique indexes on table_number and qr_code are the real
	// guard; the pre-check just gives a friendlier error on the
	// common case.
	var count int64
	if err := s.db.Model(&models.Table{}).
		Where("table_number = ? OR qr_code = ?", tableNumber, models.QRCodeFor(tableNumber)).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateTable
	}

	table := models.Table{
		TableNumber: tableNumber,
		Name:        name,
		IsActive:    true,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTable
		}
		return nil, err
	}
	return &table, nil
}

// Rename updates the customer-facing name of a table.
func (s *TableService) Rename(id uint, newName string) (*models.Table, error) {
	newName = strings.TrimSpace(newName)
	if utf8.RuneCountInString(newName) < models.TableNameMinLen {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(newName) > models.TableNameMaxLen {
		return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", models.TableNameMaxLen)}
	}

	table, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	table.Name = newName
	if err := s.db.Save(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// Deactivate soft-deletes a table: it disappears from the leaderboard
// and QR lookup but keeps its history and its QR mapping.
func (s *TableService) Deactivate(id uint) (*models.Table, error) {
	table, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return table, nil
	}

	table.IsActive = false
	if err := s.db.Save(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// List returns tables filtered by active state, highest points first,
// with a simple page/limit window.
func (s *TableService) List(onlyActive bool, page, limit int) ([]models.Table, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.db.Model(&models.Table{}).Where("is_active = ?", onlyActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tables []models.Table
	err := query.
		Order("points DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&tables).Error
	if err != nil {
		return nil, 0, err
	}
	return tables, total, nil
}
