package controller

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/service"
	"compliance_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PolicyController struct {
	PolicyService *service.PolicyService
	ReportService *service.ReportService
}

func NewPolicyController(policyService *service.PolicyService, reportService *service.ReportService) *PolicyController {
	return &PolicyController{
		PolicyService: policyService,
		ReportService: reportService,
	}
}

// ListForEmployee godoc
// @Summary 生效制度列表
// @Description 员工视角的生效制度，标注本人是否已确认
// @Tags 制度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.PolicyWithAckStatus} "成功"
// @Router /api/policies [get]
func (c *PolicyController) ListForEmployee(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	policies, err := c.PolicyService.ListForEmployee(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, policies)
}

// GetPolicy godoc
// @Summary 制度详情
// @Tags 制度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "制度ID"
// @Success 200 {object} util.Response{data=model.Policy} "成功"
// @Failure 404 {object} util.Response "制度不存在"
// @Router /api/policies/{id} [get]
func (c *PolicyController) GetPolicy(ctx *gin.Context) {
	policy, err := c.PolicyService.GetPolicy(ctx.Param("id"))
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, policy)
}

// Acknowledge godoc
// @Summary 确认已阅读制度
// @Description 每人每制度只能确认一次
// @Tags 制度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "制度ID"
// @Success 201 {object} util.Response{data=model.PolicyAcknowledgment} "确认成功"
// @Failure 409 {object} util.Response "已经确认过"
// @Router /api/policies/{id}/ack [post]
func (c *PolicyController) Acknowledge(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	ack, err := c.PolicyService.Acknowledge(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Created(ctx, ack)
}

// ListPolicies godoc
// @Summary 制度管理列表（合规专员）
// @Tags 制度管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Param   status query string false "状态过滤"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/manage/policies [get]
func (c *PolicyController) ListPolicies(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	policies, total, err := c.PolicyService.ListPolicies(page, limit, model.PolicyStatus(ctx.Query("status")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: policies, Total: total, Page: page, Limit: limit})
}

// CreatePolicy godoc
// @Summary 创建制度（合规专员）
// @Tags 制度管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.PolicyReq true "制度字段"
// @Success 201 {object} util.Response{data=model.Policy} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/manage/policies [post]
func (c *PolicyController) CreatePolicy(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PolicyReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	policy, err := c.PolicyService.CreatePolicy(claims.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, policy)
}

// UpdatePolicy godoc
// @Summary 更新制度（合规专员）
// @Tags 制度管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "制度ID"
// @Param   body body service.PolicyReq true "制度字段"
// @Success 200 {object} util.Response{data=model.Policy} "成功"
// @Failure 404 {object} util.Response "制度不存在"
// @Router /api/manage/policies/{id} [put]
func (c *PolicyController) UpdatePolicy(ctx *gin.Context) {
	var req service.PolicyReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	policy, err := c.PolicyService.UpdatePolicy(ctx.Param("id"), req)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, policy)
}

// DeletePolicy godoc
// @Summary 删除制度（合规专员）
// @Tags 制度管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "制度ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "制度不存在"
// @Router /api/manage/policies/{id} [delete]
func (c *PolicyController) DeletePolicy(ctx *gin.Context) {
	if err := c.PolicyService.DeletePolicy(ctx.Param("id")); err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetAckReport godoc
// @Summary 制度确认进度（合规专员）
// @Description 确认人数、确认率与最近确认记录
// @Tags 制度管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "制度ID"
// @Success 200 {object} util.Response{data=service.AckReport} "成功"
// @Failure 404 {object} util.Response "制度不存在"
// @Router /api/manage/policies/{id}/acks [get]
func (c *PolicyController) GetAckReport(ctx *gin.Context) {
	total, err := c.ReportService.CountActiveEmployees()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	report, err := c.PolicyService.GetAckReport(ctx.Param("id"), total)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
