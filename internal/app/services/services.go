package services

// Services defined in this package:
// - AuthService: registration, OTP verification, login, token lifecycle
// - SubscriptionService: subscription access checks
// - PaymentService: payment submission and admin review
// - MaterialService: material management and the read policy
// - EngagementService: likes, comments and progress
// - DepartmentService: department CRUD
// - UserService: profiles, admin user management, dashboard stats
// - MaintenanceService: periodic cleanup of expired rows
