package controller

import (
	"compliance_lms_backend/internal/service"
	"compliance_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnnouncementController struct {
	Service *service.AnnouncementService
}

func NewAnnouncementController(svc *service.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{Service: svc}
}

// ListPublished godoc
// @Summary 公告列表
// @Description 已发布公告，置顶优先
// @Tags 公告
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "数量上限" default(20)
// @Success 200 {object} util.Response{data=[]model.Announcement} "成功"
// @Router /api/announcements [get]
func (c *AnnouncementController) ListPublished(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	announcements, err := c.Service.ListPublished(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, announcements)
}

// List godoc
// @Summary 公告管理列表（合规专员）
// @Tags 公告管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/manage/announcements [get]
func (c *AnnouncementController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	announcements, total, err := c.Service.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: announcements, Total: total, Page: page, Limit: limit})
}

// Create godoc
// @Summary 发布公告（合规专员）
// @Tags 公告管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AnnouncementReq true "公告字段"
// @Success 201 {object} util.Response{data=model.Announcement} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/manage/announcements [post]
func (c *AnnouncementController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AnnouncementReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Create(claims.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, a)
}

// Update godoc
// @Summary 更新公告（合规专员）
// @Tags 公告管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "公告ID"
// @Param   body body service.AnnouncementReq true "公告字段"
// @Success 200 {object} util.Response{data=model.Announcement} "成功"
// @Failure 404 {object} util.Response "公告不存在"
// @Router /api/manage/announcements/{id} [put]
func (c *AnnouncementController) Update(ctx *gin.Context) {
	id, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid announcement id")
		return
	}

	var req service.AnnouncementReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Update(id, req)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Delete godoc
// @Summary 删除公告（合规专员）
// @Tags 公告管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "公告ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/manage/announcements/{id} [delete]
func (c *AnnouncementController) Delete(ctx *gin.Context) {
	id, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid announcement id")
		return
	}

	if err := c.Service.Delete(id); err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
