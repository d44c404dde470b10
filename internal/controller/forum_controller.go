package controller

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/service"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ForumController struct {
	Service *service.ForumService
	Hub     *service.ForumHub
}

func NewForumController(s *service.ForumService, hub *service.ForumHub) *ForumController {
	return &ForumController{Service: s, Hub: hub}
}

// @Summary 帖子列表
// @Description 按最近活跃排序
// @Tags 论坛
// @Produce json
// @Security BearerAuth
// @Param moduleId query int false "模块ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/forum/threads [get]
func (c *ForumController) ListThreads(ctx *gin.Context) {
	var moduleID *uint
	if raw := ctx.Query("moduleId"); raw != "" {
		id, ok := util.ParseUintParam(raw)
		if !ok {
			util.BadRequest(ctx, "invalid moduleId")
			return
		}
		moduleID = &id
	}
	page, limit := pageParams(ctx)

	result, err := c.Service.ListThreads(moduleID, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 发帖
// @Tags 论坛
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateThreadRequest true "帖子"
// @Success 201 {object} util.Response{data=model.ForumThread}
// @Router /api/forum/threads [post]
func (c *ForumController) CreateThread(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.CreateThreadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	thread, err := c.Service.CreateThread(identity.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, thread)
}

// @Summary 帖子详情
// @Description 回复以树形返回
// @Tags 论坛
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response{data=service.ThreadDetail}
// @Router /api/forum/threads/{id} [get]
func (c *ForumController) GetThread(ctx *gin.Context) {
	thread, err := c.Service.GetThread(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, thread)
}

// @Summary 回复
// @Tags 论坛
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param body body service.ReplyRequest true "回复"
// @Success 201 {object} util.Response{data=model.ForumReply}
// @Router /api/forum/threads/{id}/replies [post]
func (c *ForumController) Reply(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.ReplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	reply, err := c.Service.Reply(identity.UserID, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, reply)
}

// @Summary 点赞或取消点赞
// @Tags 论坛
// @Produce json
// @Security BearerAuth
// @Param type path string true "thread 或 reply" Enums(thread, reply)
// @Param id path string true "内容ID"
// @Success 200 {object} util.Response{data=service.LikeResult}
// @Router /api/forum/{type}/{id}/like [post]
func (c *ForumController) ToggleLike(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	result, err := c.Service.ToggleLike(identity.UserID, model.ForumContentType(ctx.Param("type")), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 订阅帖子实时事件
// @Description websocket，可通过 token 查询参数传递令牌
// @Tags 论坛
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Router /api/forum/threads/{id}/ws [get]
func (c *ForumController) Subscribe(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	threadID := ctx.Param("id")
	if _, err := c.Service.GetThread(threadID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.Hub.ServeWS(ctx.Writer, ctx.Request, threadID, identity.UserID); err != nil {
		logger.Log.Warn("Forum websocket upgrade failed", zap.Error(err))
	}
}
