package controller

import (
	"care_training_backend/internal/middleware"
	"care_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUser 取当前身份，缺失时直接写 401
func currentUser(ctx *gin.Context) (*middleware.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return nil, false
	}
	return identity, true
}

// pathID 解析路径上的数字 ID，非法时写 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseUintParam(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	return page, limit
}
