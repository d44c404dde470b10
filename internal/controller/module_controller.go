package controller

import (
	"care_training_backend/internal/service"
	"care_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	Catalog    *service.CatalogService
	Progress   *service.ProgressService
	Assessment *service.AssessmentService
}

func NewModuleController(catalog *service.CatalogService, progress *service.ProgressService, assessment *service.AssessmentService) *ModuleController {
	return &ModuleController{
		Catalog:    catalog,
		Progress:   progress,
		Assessment: assessment,
	}
}

// @Summary 模块列表
// @Description 已发布模块及当前学员的解锁状态和进度
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.ModuleOverview}
// @Router /api/modules [get]
func (c *ModuleController) List(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	modules, err := c.Catalog.Overview(ctx.Request.Context(), identity.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// @Summary 模块详情
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response{data=service.ModuleOverview}
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [get]
func (c *ModuleController) Get(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	module, err := c.Catalog.Detail(identity.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary 标记视频已观看
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response{data=model.ModuleProgress}
// @Failure 403 {object} util.Response "模块未解锁"
// @Router /api/modules/{id}/video-watched [post]
func (c *ModuleController) MarkVideoWatched(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	progress, err := c.Progress.MarkVideoWatched(ctx.Request.Context(), identity.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 标记文字稿已阅读
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response{data=model.ModuleProgress}
// @Failure 403 {object} util.Response "模块未解锁"
// @Router /api/modules/{id}/transcript-viewed [post]
func (c *ModuleController) MarkTranscriptViewed(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	progress, err := c.Progress.MarkTranscriptViewed(ctx.Request.Context(), identity.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 测评题目
// @Description 不含正确答案
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response{data=[]service.PublicQuestion}
// @Router /api/modules/{id}/questions [get]
func (c *ModuleController) Questions(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questions, err := c.Assessment.Questions(identity.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 提交测评
// @Description attemptNumber 为 0 时由服务端分配编号
// @Tags 培训模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param body body service.SubmitAssessmentRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitAssessmentResult}
// @Failure 400 {object} util.Response "提交不完整"
// @Failure 403 {object} util.Response "模块未解锁"
// @Failure 409 {object} util.Response "编号冲突"
// @Router /api/modules/{id}/assessment [post]
func (c *ModuleController) SubmitAssessment(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.SubmitAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.ModuleID = id

	result, err := c.Assessment.Submit(ctx.Request.Context(), identity.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 历次测评记录
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response{data=[]model.AssessmentAttempt}
// @Router /api/modules/{id}/attempts [get]
func (c *ModuleController) Attempts(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	attempts, err := c.Assessment.ListAttempts(identity.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary 全部模块（含未发布）
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TrainingModule}
// @Router /api/admin/modules [get]
func (c *ModuleController) AdminList(ctx *gin.Context) {
	modules, err := c.Catalog.ListAll()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// @Summary 创建模块
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateModuleRequest true "模块"
// @Success 201 {object} util.Response{data=model.TrainingModule}
// @Failure 409 {object} util.Response "顺序号已被占用"
// @Router /api/admin/modules [post]
func (c *ModuleController) Create(ctx *gin.Context) {
	var req service.CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	module, err := c.Catalog.CreateModule(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// @Summary 更新模块
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param body body service.UpdateModuleRequest true "需要更新的字段"
// @Success 200 {object} util.Response{data=model.TrainingModule}
// @Router /api/admin/modules/{id} [put]
func (c *ModuleController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.UpdateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	module, err := c.Catalog.UpdateModule(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary 上传模块视频
// @Tags 管理后台
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.TrainingModule}
// @Router /api/admin/modules/{id}/video [post]
func (c *ModuleController) UploadVideo(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	module, err := c.Catalog.UploadVideo(ctx.Request.Context(), id, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary 添加测评题目
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param body body service.AddQuestionRequest true "题目"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/admin/modules/{id}/questions [post]
func (c *ModuleController) AddQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.AddQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.Catalog.AddQuestion(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, question)
}
