package models

import "time"

// Transaction types. Points always carry the magnitude of the change;
// the type carries the direction.
const (
	TransactionEarned     = "EARNED"
	TransactionRedeemed   = "REDEEMED"
	TransactionAdjustment = "ADJUSTMENT"
)

const DescriptionMaxLen = 200

// PointTransaction is one immutable ledger entry. A row is written
// exactly once, inside the same database transaction as the balance
// change it records, and is never updated afterwards.
type PointTransaction struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TableID     uint   `gorm:"index:idx_point_tx_table,priority:1;not null" json:"table_id"`
	Table       *Table `gorm:"foreignKey:TableID" json:"table,omitempty"`
	AssignedBy  uint   `gorm:"index:idx_point_tx_actor,priority:1;not null" json:"assigned_by"`
	Actor       *User  `gorm:"foreignKey:AssignedBy" json:"actor,omitempty"`
	Points      int    `gorm:"not null" json:"points"`
	Type        string `gorm:"type:varchar(20);not null;default:'EARNED';index" json:"type"`
	Description string `gorm:"type:varchar(200)" json:"description,omitempty"`

	// Balance snapshot at the instant of the mutation.
	PreviousPoints int       `gorm:"not null" json:"previous_points"`
	NewPoints      int       `gorm:"not null" json:"new_points"`
	Timestamp      time.Time `gorm:"not null" json:"timestamp"`

	CreatedAt time.Time `gorm:"not null;index:idx_point_tx_table,priority:2;index:idx_point_tx_actor,priority:2" json:"created_at"`
}
