package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/table-loyalty/models"
)

func TestCreateDerivesQRCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	table, err := svc.Create(12, "Window seat", 1)
	assert.NoError(t, err)
	assert.Equal(t, "TABLE_12", table.QRCode)
	assert.Equal(t, "Window seat", table.Name)
	assert.True(t, table.IsActive)
	assert.Equal(t, 0, table.Points)
}

func TestCreateDefaultsName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	table, err := svc.Create(3, "   ", 1)
	assert.NoError(t, err)
	assert.Equal(t, "Table 3", table.Name)
}

func TestCreateRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	_, err := svc.Create(5, "First", 1)
	assert.NoError(t, err)

	_, err = svc.Create(5, "Second", 1)
	assert.ErrorIs(t, err, ErrDuplicateTable)
}

func TestCreateRejectsZeroNumberAndLongName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)
	var validationErr *ValidationError

	_, err := svc.Create(0, "Corner", 1)
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.Create(4, strings.Repeat("a", models.TableNameMaxLen+1), 1)
	assert.ErrorAs(t, err, &validationErr)
}

func TestNameLimitCountsCharactersNotBytes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	atLimit := strings.Repeat("é", models.TableNameMaxLen)
	table, err := svc.Create(5, atLimit, 1)
	assert.NoError(t, err)
	assert.Equal(t, atLimit, table.Name)

	renamed, err := svc.Rename(table.ID, strings.Repeat("ü", models.TableNameMaxLen))
	assert.NoError(t, err)
	assert.Equal(t, models.TableNameMaxLen, len([]rune(renamed.Name)))

	var validationErr *ValidationError
	_, err = svc.Rename(table.ID, strings.Repeat("é", models.TableNameMaxLen+1))
	assert.ErrorAs(t, err, &validationErr)
}

func TestFindByQRNormalizesCase(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	created, err := svc.Create(8, "Patio", 1)
	assert.NoError(t, err)

	found, err := svc.FindByQR("  table_8 ")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindByQR("TABLE_99")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestRenameTrimsAndValidates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	table, err := svc.Create(2, "Old name", 1)
	assert.NoError(t, err)

	renamed, err := svc.Rename(table.ID, "  New name  ")
	assert.NoError(t, err)
	assert.Equal(t, "New name", renamed.Name)

	var validationErr *ValidationError
	_, err = svc.Rename(table.ID, "   ")
	assert.ErrorAs(t, err, &validationErr)
	_, err = svc.Rename(table.ID, strings.Repeat("b", models.TableNameMaxLen+1))
	assert.ErrorAs(t, err, &validationErr)
}

func TestDeactivateHidesFromQRLookupButKeepsRecord(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	table, err := svc.Create(6, "Booth", 1)
	assert.NoError(t, err)

	deactivated, err := svc.Deactivate(table.ID)
	assert.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = svc.FindByQR("TABLE_6")
	assert.ErrorIs(t, err, ErrTableNotFound)

	// Record and QR mapping survive for history and audit.
	kept, err := svc.GetByID(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, "TABLE_6", kept.QRCode)

	// The number can never be reused on a fresh table.
	_, err = svc.Create(6, "Replacement", 1)
	assert.ErrorIs(t, err, ErrDuplicateTable)
}

func TestListPaginatesByPoints(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTableService(db)

	for i := uint(1); i <= 4; i++ {
		table, err := svc.Create(i, "", 1)
		assert.NoError(t, err)
		assert.NoError(t, db.Model(table).Update("points", int(i)*10).Error)
	}

	tables, total, err := svc.List(true, 1, 2)
	assert.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, tables, 2)
	assert.Equal(t, 40, tables[0].Points)
	assert.Equal(t, 30, tables[1].Points)
}
