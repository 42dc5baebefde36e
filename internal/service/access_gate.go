package service

import (
	"compliance_lms_backend/internal/model"
)

// CanAccessCourse 纯谓词：员工是否可见/可学某门课程。
// 受众为 all，或员工部门命中部门集合，或员工角色命中角色集合。
// 合规专员与管理员对读取/管理操作不受受众限制（由调用方先行判断）。
func CanAccessCourse(user *model.User, course *model.Course) bool {
	switch course.AudienceType {
	case model.AudienceAll:
		return true
	case model.AudienceDepartment:
		for _, d := range course.Departments {
			if d == user.Department {
				return true
			}
		}
	case model.AudienceRole:
		for _, r := range course.Roles {
			if r == string(user.Role) {
				return true
			}
		}
	}
	return false
}
