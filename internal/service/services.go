package service

import (
	"Galeguia/internal/service/admin"
	"Galeguia/internal/service/auth"
	"Galeguia/internal/service/course"
	"Galeguia/internal/service/curriculum"
	"Galeguia/internal/service/enrollment"
)

type Collection struct {
	AuthService       *auth.AuthService
	CourseService     *course.CourseService
	CurriculumService *curriculum.CurriculumService
	EnrollmentService *enrollment.EnrollmentService
	AdminService      *admin.AdminService
}
