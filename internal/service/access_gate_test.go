package service

import (
	"compliance_lms_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestCanAccessCourse(t *testing.T) {
	engineer := &model.User{Role: model.Employee, Department: "工程部"}
	sales := &model.User{Role: model.Employee, Department: "销售部"}
	compliance := &model.User{Role: model.Compliance, Department: "合规部"}

	tests := []struct {
		name   string
		user   *model.User
		course *model.Course
		want   bool
	}{
		{
			name:   "面向全员",
			user:   sales,
			course: &model.Course{AudienceType: model.AudienceAll},
			want:   true,
		},
		{
			name: "部门命中",
			user: engineer,
			course: &model.Course{
				AudienceType: model.AudienceDepartment,
				Departments:  datatypes.JSONSlice[string]{"工程部", "产品部"},
			},
			want: true,
		},
		{
			name: "部门未命中",
			user: sales,
			course: &model.Course{
				AudienceType: model.AudienceDepartment,
				Departments:  datatypes.JSONSlice[string]{"工程部"},
			},
			want: false,
		},
		{
			name: "部门集合为空",
			user: engineer,
			course: &model.Course{
				AudienceType: model.AudienceDepartment,
			},
			want: false,
		},
		{
			name: "角色命中",
			user: compliance,
			course: &model.Course{
				AudienceType: model.AudienceRole,
				Roles:        datatypes.JSONSlice[string]{"compliance"},
			},
			want: true,
		},
		{
			name: "角色未命中",
			user: engineer,
			course: &model.Course{
				AudienceType: model.AudienceRole,
				Roles:        datatypes.JSONSlice[string]{"compliance"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessCourse(tt.user, tt.course))
		})
	}
}
