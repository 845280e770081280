package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-loyalty/services"
	"github.com/yeremiapane/table-loyalty/utils"
	"gorm.io/gorm"
)

type TableController struct {
	Tables      *services.TableService
	Ledger      *services.LedgerService
	Leaderboard *services.LeaderboardService
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{
		Tables:      services.NewTableService(db),
		Ledger:      services.NewLedgerService(db),
		Leaderboard: services.NewLeaderboardService(db),
	}
}

// GetLeaderboard -> public ranking of active tables
func (tc *TableController) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := tc.Leaderboard.TopN(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Leaderboard", gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}

// GetTableByQR -> public lookup of a scanned table, with its current
// rank and medal attached.
func (tc *TableController) GetTableByQR(c *gin.Context) {
	table, err := tc.Tables.FindByQR(c.Param("qr_code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	entry, err := tc.Leaderboard.Rank(table)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table found", entry)
}

// GetAllTables -> paginated table list for staff
func (tc *TableController) GetAllTables(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	onlyActive := c.DefaultQuery("is_active", "true") == "true"

	tables, total, err := tc.Tables.List(onlyActive, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of tables", gin.H{
		"tables":     tables,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// GetTableByID -> single table detail
func (tc *TableController) GetTableByID(c *gin.Context) {
	id, err := parseID(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// CreateTable -> provision a new table (admin)
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber uint   `json:"table_number" binding:"required"`
		Name        string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	creator, _ := actorID(c)
	table, err := tc.Tables.Create(req.TableNumber, req.Name, creator)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %d (qr=%s)", table.TableNumber, table.QRCode)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// RenameTable -> update the customer-facing name
func (tc *TableController) RenameTable(c *gin.Context) {
	id, err := parseID(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.Rename(id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d renamed to %q", table.ID, table.Name)
	utils.RespondJSON(c, http.StatusOK, "Table renamed", table)
}

// DeactivateTable -> soft delete (admin); history and QR mapping stay
func (tc *TableController) DeactivateTable(c *gin.Context) {
	id, err := parseID(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.Deactivate(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d deactivated", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deactivated", gin.H{
		"id": table.ID,
	})
}

// GetTableHistory -> recent ledger entries for one table
func (tc *TableController) GetTableHistory(c *gin.Context) {
	id, err := parseID(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if _, err := tc.Tables.GetByID(id); err != nil {
		respondServiceError(c, err)
		return
	}

	entries, err := tc.Ledger.HistoryForTable(id, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table history", gin.H{
		"count":        len(entries),
		"transactions": entries,
	})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
