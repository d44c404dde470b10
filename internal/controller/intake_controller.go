package controller

import (
	"care_training_backend/internal/middleware"
	"care_training_backend/internal/service"
	"care_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type IntakeController struct {
	Service *service.IntakeService
}

func NewIntakeController(s *service.IntakeService) *IntakeController {
	return &IntakeController{Service: s}
}

// @Summary 入院评估问卷
// @Tags 入院评估
// @Produce json
// @Success 200 {object} util.Response{data=[]model.IntakeQuestion}
// @Router /api/intake/questions [get]
func (c *IntakeController) Questions(ctx *gin.Context) {
	questions, err := c.Service.Questions()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 提交入院评估
// @Tags 入院评估
// @Accept json
// @Produce json
// @Param body body service.SubmitIntakeRequest true "答卷"
// @Success 201 {object} util.Response{data=model.IntakeSubmission}
// @Failure 400 {object} util.Response "答卷不完整"
// @Router /api/intake/submissions [post]
func (c *IntakeController) Submit(ctx *gin.Context) {
	var req service.SubmitIntakeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var submittedBy *uint
	if identity, ok := middleware.CurrentIdentity(ctx); ok {
		submittedBy = &identity.UserID
	}

	sub, err := c.Service.Submit(submittedBy, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary 入院评估记录
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/intake/submissions [get]
func (c *IntakeController) ListSubmissions(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	result, err := c.Service.ListSubmissions(page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
