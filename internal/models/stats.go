package models

// PlatformStats are the admin dashboard counters.
type PlatformStats struct {
	TotalUsers       int `json:"total_users"`
	TotalCourses     int `json:"total_courses"`
	PublishedCourses int `json:"published_courses"`
	TotalEnrollments int `json:"total_enrollments"`
}
