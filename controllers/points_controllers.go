package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-loyalty/models"
	"github.com/yeremiapane/table-loyalty/services"
	"github.com/yeremiapane/table-loyalty/utils"
	"gorm.io/gorm"
)

type PointsController struct {
	Points *services.PointsService
	Ledger *services.LedgerService
}

func NewPointsController(db *gorm.DB, maxPointsPerTransaction int) *PointsController {
	return &PointsController{
		Points: services.NewPointsService(db, maxPointsPerTransaction),
		Ledger: services.NewLedgerService(db),
	}
}

type mutationRequest struct {
	QRCode      string `json:"qr_code"`
	Points      int    `json:"points" binding:"required"`
	Description string `json:"description"`
}

// AddPoints -> award points to the table identified by QR code
func (pc *PointsController) AddPoints(c *gin.Context) {
	var req mutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.QRCode == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("qr_code is required"))
		return
	}

	actor, _ := actorID(c)
	table, entry, err := pc.Points.EarnByQR(req.QRCode, req.Points, actor, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("%d points added to table %d by user %d", req.Points, table.ID, actor)
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("%d points added to %s", req.Points, table.Name), gin.H{
		"table":       table,
		"transaction": entry,
	})
}

// AddPointsToTable -> award points by table id
func (pc *PointsController) AddPointsToTable(c *gin.Context) {
	id, err := parseID(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req mutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor, _ := actorID(c)
	table, entry, err := pc.Points.Earn(id, req.Points, actor, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("%d points added to table %d by user %d", req.Points, table.ID, actor)
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("%d points added", req.Points), gin.H{
		"table":       table,
		"transaction": entry,
	})
}

// RedeemPoints -> redeem points from the table identified by QR code
func (pc *PointsController) RedeemPoints(c *gin.Context) {
	var req mutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.QRCode == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("qr_code is required"))
		return
	}

	actor, _ := actorID(c)
	table, entry, err := pc.Points.RedeemByQR(req.QRCode, req.Points, actor, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("%d points redeemed from table %d by user %d", req.Points, table.ID, actor)
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("%d points redeemed", req.Points), gin.H{
		"table":       table,
		"transaction": entry,
	})
}

// ResetTablePoints -> zero a table's balance (admin)
func (pc *PointsController) ResetTablePoints(c *gin.Context) {
	id, err := parseID(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for reset.
	_ = c.ShouldBindJSON(&req)

	actor, _ := actorID(c)
	table, entry, err := pc.Points.Reset(id, actor, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d points reset by user %d (was %d)", table.ID, actor, entry.PreviousPoints)
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Points of table %s reset", table.Name), gin.H{
		"table":       table,
		"transaction": entry,
	})
}

// GetTransactions -> filtered, paginated ledger listing
func (pc *PointsController) GetTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := services.TransactionFilter{Type: c.Query("type")}
	if raw := c.Query("table_id"); raw != "" {
		if id, err := parseID(raw); err == nil {
			filter.TableID = id
		}
	}
	if raw := c.Query("user_id"); raw != "" {
		if id, err := parseID(raw); err == nil {
			filter.UserID = id
		}
	}

	entries, total, err := pc.Ledger.List(filter, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Transactions", gin.H{
		"count":        len(entries),
		"transactions": entries,
		"pagination":   utils.NewPagination(page, limit, total),
	})
}

// GetDailyStats -> per-type totals for one calendar day
func (pc *PointsController) GetDailyStats(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	stats, err := pc.Ledger.DailyStats(date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Daily stats", stats)
}

// GetUserStats -> one cashier's totals and recent activity. Admins may
// inspect any user; everyone else only themselves.
func (pc *PointsController) GetUserStats(c *gin.Context) {
	actor, _ := actorID(c)
	userID := actor
	if raw := c.Param("user_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		userID = id
	}

	role, _ := c.Get("role")
	if userID != actor && role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, errors.New("not authorized to view these stats"))
		return
	}

	stats, recent, err := pc.Ledger.UserStats(userID, 10)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "User stats", gin.H{
		"stats":           stats,
		"recent_activity": recent,
	})
}
