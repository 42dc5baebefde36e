package controller

import (
	"compliance_lms_backend/internal/service"
	"compliance_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// GetOverview godoc
// @Summary 合规大盘（合规专员）
// @Description 全部上线课程与部门的合规数据汇总
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Overview} "成功"
// @Router /api/manage/reports/overview [get]
func (c *ReportController) GetOverview(ctx *gin.Context) {
	overview, err := c.ReportService.GetOverview()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// GetCourseStats godoc
// @Summary 课程统计（合规专员）
// @Description 报名数、完成数、完成率、平均分
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=repository.CourseStats} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/manage/reports/courses/{id} [get]
func (c *ReportController) GetCourseStats(ctx *gin.Context) {
	id, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	stats, err := c.ReportService.GetCourseStats(id)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// GetDepartmentCompliance godoc
// @Summary 部门合规率（合规专员）
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Param   department path string true "部门名称"
// @Success 200 {object} util.Response{data=repository.DepartmentCompliance} "成功"
// @Router /api/manage/reports/departments/{department} [get]
func (c *ReportController) GetDepartmentCompliance(ctx *gin.Context) {
	stats, err := c.ReportService.GetDepartmentCompliance(ctx.Param("department"))
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// ListOverdue godoc
// @Summary 超期未完成名单（合规专员）
// @Description 必修课已过截止时间仍未完成的员工
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]repository.OverdueEntry} "成功"
// @Router /api/manage/reports/overdue [get]
func (c *ReportController) ListOverdue(ctx *gin.Context) {
	entries, err := c.ReportService.ListOverdue()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// GetMySummary godoc
// @Summary 我的培训汇总
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=repository.UserSummary} "成功"
// @Router /api/my/summary [get]
func (c *ReportController) GetMySummary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.ReportService.GetUserSummary(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// GetUserSummary godoc
// @Summary 指定员工培训汇总（合规专员）
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=repository.UserSummary} "成功"
// @Router /api/manage/reports/users/{id} [get]
func (c *ReportController) GetUserSummary(ctx *gin.Context) {
	id, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	summary, err := c.ReportService.GetUserSummary(id)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}
