package util

import (
	"compliance_lms_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// FromServiceError 将 service 层错误映射到 HTTP 状态码
func FromServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrAnswerCountMismatch),
		errors.Is(err, ErrInvalidWatchTime),
		errors.Is(err, ErrNoVideoContent),
		errors.Is(err, ErrNotVideoCourse):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrProgressNotFound),
		errors.Is(err, ErrCertificateNotFound),
		errors.Is(err, ErrPolicyNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c)
	case errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrCourseNotOpen),
		errors.Is(err, ErrPolicyNotOpen):
		Forbidden(c)
	case errors.Is(err, ErrEmailRegistered),
		errors.Is(err, ErrAlreadyAcknowledged):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrTrainingNotCompleted),
		errors.Is(err, ErrNoQuiz),
		errors.Is(err, ErrVideoNotCompleted),
		errors.Is(err, ErrAttemptLimitReached),
		errors.Is(err, ErrAlreadyPassed),
		errors.Is(err, ErrAlreadyCompleted):
		Error(c, http.StatusPreconditionFailed, err.Error())
	default:
		LogInternalError(c, err)
	}
}
