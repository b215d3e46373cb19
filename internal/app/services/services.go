package services

// Services defined in this package:
// - AuthService: registration, login, refresh token rotation
// - UserService: profile read/update
// - ActivityService: activity lifecycle, lists, admin operations
// - EnrollmentService: capacity-guarded enroll and cancel
// - CommentService: activity comments and ratings
