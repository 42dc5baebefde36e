package database

import (
	"compliance_lms_backend/internal/config"
	"compliance_lms_backend/internal/model"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseQuestion{},
		&model.ProgressRecord{},
		&model.QuizAttempt{},
		&model.Certificate{},
		&model.Policy{},
		&model.PolicyAcknowledgment{},
		&model.Announcement{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 首次启动时创建默认管理员账号，上线后应立即修改密码
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		password := os.Getenv("COMPLY_LMS_ADMIN_PASSWORD")
		if password == "" {
			password = "changeme"
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		admin := &model.User{
			Name:       "系统管理员",
			Email:      "admin@example.com",
			Password:   string(hashed),
			Role:       model.Admin,
			Department: "IT",
		}
		db.Create(admin)
		log.Println("Default admin account created: admin@example.com")
	}

	return db, nil
}
