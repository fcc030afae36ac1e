package controllers

import (
	"context"
	"net/http"

	"opsdash-backend/services"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReportStore interface {
	Overview(ctx context.Context, userID uint, p services.Period) (*services.Overview, error)
}

type ReportController struct {
	ReportSvc ReportStore
}

func NewReportController(svc ReportStore) *ReportController {
	return &ReportController{ReportSvc: svc}
}

// Overview (GET /api/bridge-retreats/reports/overview?from=YYYY-MM-DD&to=YYYY-MM-DD)
func (ctl *ReportController) Overview(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	from, to, err := parsePeriod(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	o, err := ctl.ReportSvc.Overview(c.Request.Context(), uid, services.Period{From: from, To: to})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, o)
}
