package controller

import (
	"care_training_backend/internal/service"
	"care_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LiveClassController struct {
	Service *service.LiveClassService
}

func NewLiveClassController(s *service.LiveClassService) *LiveClassController {
	return &LiveClassController{Service: s}
}

// @Summary 即将开始的直播课
// @Tags 直播课
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.LiveClassView}
// @Router /api/live-classes [get]
func (c *LiveClassController) ListUpcoming(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	classes, err := c.Service.ListUpcoming(identity.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// @Summary 报名
// @Tags 直播课
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response{data=model.LiveClassRegistration}
// @Failure 409 {object} util.Response "已报名或名额已满"
// @Router /api/live-classes/{id}/register [post]
func (c *LiveClassController) Register(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	reg, err := c.Service.Register(ctx.Request.Context(), identity.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, reg)
}

// @Summary 取消报名
// @Tags 直播课
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/live-classes/{id}/register [delete]
func (c *LiveClassController) Unregister(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.Service.Unregister(identity.UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 安排直播课
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ScheduleClassRequest true "课程"
// @Success 201 {object} util.Response{data=model.LiveClass}
// @Router /api/admin/live-classes [post]
func (c *LiveClassController) Schedule(ctx *gin.Context) {
	var req service.ScheduleClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	class, err := c.Service.Schedule(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, class)
}
