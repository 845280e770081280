package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	// TableNameMinLen / TableNameMaxLen bound the customer-facing table name.
	TableNameMinLen = 1
	TableNameMaxLen = 50

	qrPrefix = "TABLE_"
)

type Table struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TableNumber      uint      `gorm:"uniqueIndex;not null" json:"table_number"`
	Name             string    `gorm:"type:varchar(50);not null" json:"name"`
	QRCode           string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"qr_code"`
	Points           int       `gorm:"not null;default:0" json:"points"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	LastPointsUpdate time.Time `gorm:"not null" json:"last_points_update"`
	CreatedBy        uint      `gorm:"index" json:"created_by"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

// QRCodeFor derives the QR payload for a table number. The QR code is
// always derived, never supplied by a caller, so a table and its code
// can never drift apart.
func QRCodeFor(tableNumber uint) string {
	return fmt.Sprintf("%s%d", qrPrefix, tableNumber)
}

// NormalizeQR uppercases a scanned code so lookups are case-insensitive.
func NormalizeQR(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BeforeCreate fills in the derived QR code and the initial
// last_points_update stamp.
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.QRCode == "" {
		t.QRCode = QRCodeFor(t.TableNumber)
	}
	if t.LastPointsUpdate.IsZero() {
		t.LastPointsUpdate = time.Now()
	}
	return nil
}
