package util

import (
	"compliance_lms_backend/pkg/logger"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

func statusFor(err error) int {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromServiceError(c, err)
	return w.Code
}

func TestFromServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"校验错误", ErrValidation, http.StatusBadRequest},
		{"包装过的校验错误", fmt.Errorf("%w: title is required", ErrValidation), http.StatusBadRequest},
		{"答案数量不匹配", ErrAnswerCountMismatch, http.StatusBadRequest},
		{"非法观看时长", ErrInvalidWatchTime, http.StatusBadRequest},
		{"无视频内容", ErrNoVideoContent, http.StatusBadRequest},
		{"非视频课程", ErrNotVideoCourse, http.StatusBadRequest},
		{"课程不存在", ErrCourseNotFound, http.StatusNotFound},
		{"记录不存在", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"无权访问", ErrAccessDenied, http.StatusForbidden},
		{"课程未开放", ErrCourseNotOpen, http.StatusForbidden},
		{"重复确认", ErrAlreadyAcknowledged, http.StatusConflict},
		{"培训未完成", ErrTrainingNotCompleted, http.StatusPreconditionFailed},
		{"视频未看完", ErrVideoNotCompleted, http.StatusPreconditionFailed},
		{"答题次数用尽", ErrAttemptLimitReached, http.StatusPreconditionFailed},
		{"已通过不可重考", ErrAlreadyPassed, http.StatusPreconditionFailed},
		{"已完成不可重学", ErrAlreadyCompleted, http.StatusPreconditionFailed},
		{"未知错误兜底500", fmt.Errorf("database gone"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
