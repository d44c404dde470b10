package controller

import (
	"care_training_backend/internal/service"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(s *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: s}
}

// @Summary 培训概览
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.AnalyticsSummary}
// @Router /api/admin/analytics [get]
func (c *AnalyticsController) Summary(ctx *gin.Context) {
	summary, err := c.Service.Summary()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary 导出学习进度
// @Tags 管理后台
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /api/admin/export/progress.csv [get]
func (c *AnalyticsController) ExportProgress(ctx *gin.Context) {
	filename := fmt.Sprintf("progress-%s.csv", time.Now().Format("20060102"))
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// 已开始写响应体，出错只能记录日志
	if err := c.Service.ExportProgressCSV(ctx.Writer); err != nil {
		logger.Log.Error("Progress export failed", zap.Error(err))
		ctx.Abort()
	}
}
