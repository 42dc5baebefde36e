package service

import (
	"compliance_lms_backend/internal/config"
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user := &model.User{
		Name:       "李雷",
		Email:      "lilei@example.com",
		Password:   "s3cret-pass",
		Role:       model.Admin, // 自助注册不允许带入管理员角色
		Department: "工程部",
	}
	require.NoError(t, svc.Register(user))
	assert.Equal(t, model.Employee, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	// 重复邮箱注册报冲突
	err := svc.Register(&model.User{Name: "李雷二号", Email: "lilei@example.com", Password: "x"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	token, err := svc.Login("lilei@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// 登录成功后记录登录时间
	var got model.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.WithinDuration(t, time.Now(), got.LastLogin, time.Minute)

	_, err = svc.Login("lilei@example.com", "wrong")
	assert.Error(t, err)
	_, err = svc.Login("nobody@example.com", "s3cret-pass")
	assert.Error(t, err)
}

func TestLoginDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user := &model.User{Name: "王五", Email: "wangwu@example.com", Password: "s3cret-pass"}
	require.NoError(t, svc.Register(user))
	require.NoError(t, db.Model(user).Update("disabled", true).Error)

	_, err := svc.Login("wangwu@example.com", "s3cret-pass")
	assert.Error(t, err)
}
