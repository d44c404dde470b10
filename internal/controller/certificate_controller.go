package controller

import (
	"care_training_backend/internal/service"
	"care_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	Service *service.CertificateService
}

func NewCertificateController(s *service.CertificateService) *CertificateController {
	return &CertificateController{Service: s}
}

// @Summary 证书资格
// @Tags 证书
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Eligibility}
// @Router /api/certificate/eligibility [get]
func (c *CertificateController) Eligibility(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	e, err := c.Service.CheckEligibility(identity.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, e)
}

// @Summary 申请证书
// @Description 已签发时返回原证书
// @Tags 证书
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 400 {object} util.Response "未完成全部模块"
// @Router /api/certificate [post]
func (c *CertificateController) Issue(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	cert, err := c.Service.Issue(ctx.Request.Context(), identity.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// @Summary 我的证书
// @Tags 证书
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /api/certificate [get]
func (c *CertificateController) Get(ctx *gin.Context) {
	identity, ok := currentUser(ctx)
	if !ok {
		return
	}
	cert, err := c.Service.Get(identity.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// @Summary 验证证书编号
// @Tags 证书
// @Produce json
// @Param serial path string true "证书编号"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /api/certificates/verify/{serial} [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	cert, err := c.Service.Verify(ctx.Param("serial"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"serialNumber":     cert.SerialNumber,
		"traineeName":      cert.TraineeName,
		"completedModules": cert.CompletedModules,
		"issuedAt":         cert.IssuedAt,
	})
}
