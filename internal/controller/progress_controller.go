package controller

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/service"
	"compliance_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	UserService     *service.UserService
}

func NewProgressController(progressService *service.ProgressService, userService *service.UserService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		UserService:     userService,
	}
}

// currentUser 取完整用户记录，受众过滤需要部门等字段
func (c *ProgressController) currentUser(ctx *gin.Context) *model.User {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return nil
	}
	user, err := c.UserService.GetUser(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

// StartCourse godoc
// @Summary 开始学习课程
// @Description 幂等建立学习记录，已有记录直接返回
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.ProgressRecord} "成功"
// @Failure 403 {object} util.Response "不在课程受众范围内"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/start [post]
func (c *ProgressController) StartCourse(ctx *gin.Context) {
	user := c.currentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	record, err := c.ProgressService.StartCourse(user, courseID)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

type VideoProgressRequest struct {
	WatchedSeconds int `json:"watchedSeconds" binding:"min=0"`
	TotalSeconds   int `json:"totalSeconds" binding:"required,min=1"`
}

// UpdateVideoProgress godoc
// @Summary 上报视频观看进度
// @Description 观看秒数单调不减，达到 90% 即视为看完
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body VideoProgressRequest true "观看进度"
// @Success 200 {object} util.Response{data=model.ProgressRecord} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/courses/{id}/video-progress [post]
func (c *ProgressController) UpdateVideoProgress(ctx *gin.Context) {
	user := c.currentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req VideoProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.ProgressService.UpdateVideoProgress(user, courseID, req.WatchedSeconds, req.TotalSeconds)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// SubmitQuiz godoc
// @Summary 提交测验答卷
// @Description 判分并推进学习状态，通过后不可逆
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.QuizSubmission true "答卷"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 412 {object} util.Response "不满足答题条件"
// @Router /api/courses/{id}/quiz [post]
func (c *ProgressController) SubmitQuiz(ctx *gin.Context) {
	user := c.currentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var sub service.QuizSubmission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, attempt, err := c.ProgressService.SubmitQuiz(user, courseID, sub)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"record":  record,
		"attempt": attempt,
	})
}

// Restart godoc
// @Summary 重新学习
// @Description 视频进度清零重学，测验次数保留；已完成的培训不允许重置
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.ProgressRecord} "成功"
// @Failure 404 {object} util.Response "学习记录不存在"
// @Router /api/courses/{id}/restart [post]
func (c *ProgressController) Restart(ctx *gin.Context) {
	user := c.currentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := util.MustParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	record, err := c.ProgressService.Restart(user, courseID)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// GetProgress godoc
// @Summary 查询单课学习进度
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.ProgressRecord} "成功"
// @Failure 404 {object} util.Response "学习记录不存在"
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
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

	record, err := c.ProgressService.GetProgress(claims.UserID, courseID)
	if err != nil {
		util.FromServiceError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// ListMyProgress godoc
// @Summary 我的全部学习记录
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ProgressRecord} "成功"
// @Router /api/my/progress [get]
func (c *ProgressController) ListMyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.ProgressService.ListMyProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// ListCourseProgress godoc
// @Summary 某课程全员学习进度（合规专员）
// @Tags 课程管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/manage/courses/{id}/progress [get]
func (c *ProgressController) ListCourseProgress(ctx *gin.Context) {
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

	records, total, err := c.ProgressService.ListCourseProgress(courseID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: records, Total: total, Page: page, Limit: limit})
}
