package app_errors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")
var ErrCourseNotFound = errors.New("course not found")
var ErrModuleNotFound = errors.New("module not found")
var ErrLessonNotFound = errors.New("lesson not found")
var ErrNotCourseOwner = errors.New("you are not the course owner")
var ErrAdminRequired = errors.New("admin privileges required")
var ErrCourseNotPublished = errors.New("course is not published")
var ErrAlreadyEnrolled = errors.New("user already enrolled")
var ErrNotEnrolled = errors.New("user not enrolled")
var ErrLessonType = errors.New("invalid lesson type")
var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")
