package util

import "errors"

// 业务错误按类别分组：校验类 / 不存在类 / 权限类 / 前置条件类 / 重复类。
// controller 统一通过 FromServiceError 映射到 HTTP 状态码。
var (
	ErrValidation          = errors.New("validation failed")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	ErrInvalidWatchTime    = errors.New("invalid watch time")
	ErrNoVideoContent      = errors.New("course has no video content")
	ErrNotVideoCourse      = errors.New("course content type is not video")

	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrCourseNotFound      = errors.New("course not found")
	ErrProgressNotFound    = errors.New("progress record not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrPolicyNotFound      = errors.New("policy not found")

	ErrAccessDenied   = errors.New("access denied")
	ErrCourseNotOpen  = errors.New("course not active or not accessible")
	ErrPolicyNotOpen  = errors.New("policy not active")

	ErrTrainingNotCompleted = errors.New("training not completed")
	ErrNoQuiz               = errors.New("course has no quiz")
	ErrVideoNotCompleted    = errors.New("video not completed")
	ErrAttemptLimitReached  = errors.New("attempt limit reached")
	ErrAlreadyPassed        = errors.New("quiz already passed, retakes not allowed")
	ErrAlreadyCompleted     = errors.New("completed training cannot be restarted")

	ErrAlreadyAcknowledged = errors.New("policy already acknowledged")
)
