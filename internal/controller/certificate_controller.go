package controller

import (
	"compliance_lms_backend/internal/service"
	"compliance_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertService *service.CertificateService
	UserService *service.UserService
}

func NewCertificateController(certService *service.CertificateService, userService *service.UserService) *CertificateController {
	return &CertificateController{
		CertService: certService,
		UserService: userService,
	}
}

// Issue godoc
// @Summary 签发结业证书
// @Description 培训完成后签发证书，重复调用返回已有证书
// @Tags 证书
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Certificate} "成功"
// @Failure 412 {object} util.Response "培训未完成"
// @Router /api/courses/{id}/certificate [post]
func (c *CertificateController) Issue(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	user, err := c.UserService.GetUser(claims.UserID)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}

	cert, err := c.CertService.Issue(user, courseID)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// ListMine godoc
// @Summary 我的证书列表
// @Tags 证书
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Certificate} "成功"
// @Router /api/my/certificates [get]
func (c *CertificateController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.CertService.ListMine(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// Download godoc
// @Summary 下载证书
// @Description 返回证书全量数据并累加下载计数
// @Tags 证书
// @Produce  json
// @Security ApiKeyAuth
// @Param   certificateId path string true "证书编号"
// @Success 200 {object} util.Response{data=model.Certificate} "成功"
// @Failure 403 {object} util.Response "非本人证书"
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/my/certificates/{certificateId}/download [post]
func (c *CertificateController) Download(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	cert, err := c.CertService.RecordDownload(claims.UserID, ctx.Param("certificateId"))
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// Verify godoc
// @Summary 证书验证（公开）
// @Description 按证书编号验证真伪与当前有效性，无需登录
// @Tags 证书
// @Produce  json
// @Param   certificateId path string true "证书编号"
// @Success 200 {object} util.Response{data=service.VerifyResult} "成功"
// @Router /api/certificates/{certificateId}/verify [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	result, err := c.CertService.Verify(ctx.Param("certificateId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type InvalidateRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Invalidate godoc
// @Summary 吊销证书（合规专员）
// @Tags 证书管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   certificateId path string true "证书编号"
// @Param   body body InvalidateRequest true "吊销原因"
// @Success 200 {object} util.Response{data=model.Certificate} "成功"
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/manage/certificates/{certificateId}/invalidate [post]
func (c *CertificateController) Invalidate(ctx *gin.Context) {
	var req InvalidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cert, err := c.CertService.Invalidate(ctx.Param("certificateId"), req.Reason)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// ListByCourse godoc
// @Summary 某课程已发证书（合规专员）
// @Tags 证书管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/manage/courses/{id}/certificates [get]
func (c *CertificateController) ListByCourse(ctx *gin.Context) {
	courseID, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	certs, total, err := c.CertService.ListByCourse(courseID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: certs, Total: total, Page: page, Limit: limit})
}
