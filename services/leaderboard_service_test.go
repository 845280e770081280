package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-loyalty/models"
)

func seedRankedTable(t *testing.T, db *gorm.DB, number uint, points int, updated time.Time) models.Table {
	t.Helper()
	table := seedTable(t, db, number, points)
	err := db.Model(&table).Update("last_points_update", updated).Error
	if err != nil {
		t.Fatalf("failed to set last_points_update: %v", err)
	}
	table.LastPointsUpdate = updated
	return table
}

func TestTopNOrdersByPointsThenEarlierUpdate(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// A and B tie on points; A reached the score first and wins the tie.
	tableA := seedRankedTable(t, db, 1, 50, base)
	tableB := seedRankedTable(t, db, 2, 50, base.Add(time.Hour))
	tableC := seedRankedTable(t, db, 3, 80, base.Add(2*time.Hour))

	svc := NewLeaderboardService(db)
	entries, err := svc.TopN(3)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.Equal(t, tableC.ID, entries[0].ID)
	assert.Equal(t, tableA.ID, entries[1].ID)
	assert.Equal(t, tableB.ID, entries[2].ID)

	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Position, entries[1].Position, entries[2].Position})
	assert.Equal(t, "🥇", entries[0].Medal)
	assert.Equal(t, "🥈", entries[1].Medal)
	assert.Equal(t, "🥉", entries[2].Medal)
}

func TestTopNIsStableAcrossCalls(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := uint(1); i <= 5; i++ {
		seedRankedTable(t, db, i, 10*int(i%3), base.Add(time.Duration(i)*time.Minute))
	}

	svc := NewLeaderboardService(db)
	first, err := svc.TopN(5)
	assert.NoError(t, err)
	second, err := svc.TopN(5)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTopNHonorsLimitAndSkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedRankedTable(t, db, 1, 100, base)
	seedRankedTable(t, db, 2, 90, base)
	retired := seedRankedTable(t, db, 3, 200, base)
	assert.NoError(t, db.Model(&retired).Update("is_active", false).Error)

	svc := NewLeaderboardService(db)
	entries, err := svc.TopN(1)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].TableNumber)
}

func TestRankMatchesFullOrdering(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tableA := seedRankedTable(t, db, 1, 50, base)
	tableB := seedRankedTable(t, db, 2, 50, base.Add(time.Hour))
	tableC := seedRankedTable(t, db, 3, 80, base.Add(2*time.Hour))

	svc := NewLeaderboardService(db)

	entryC, err := svc.Rank(&tableC)
	assert.NoError(t, err)
	assert.Equal(t, 1, entryC.Position)
	assert.Equal(t, "🥇", entryC.Medal)

	entryA, err := svc.Rank(&tableA)
	assert.NoError(t, err)
	assert.Equal(t, 2, entryA.Position)
	assert.Equal(t, "🥈", entryA.Medal)

	entryB, err := svc.Rank(&tableB)
	assert.NoError(t, err)
	assert.Equal(t, 3, entryB.Position)
	assert.Equal(t, "🥉", entryB.Medal)
}

func TestMedalForPosition(t *testing.T) {
	assert.Equal(t, "🥇", MedalForPosition(1))
	assert.Equal(t, "🥈", MedalForPosition(2))
	assert.Equal(t, "🥉", MedalForPosition(3))
	assert.Equal(t, "", MedalForPosition(4))
	assert.Equal(t, "", MedalForPosition(0))
}
