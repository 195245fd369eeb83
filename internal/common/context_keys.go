// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// AdminKeyHeader carries the admin back-office key
	AdminKeyHeader = "X-Admin-Key"
	// UserIDKey is the context key for storing the authenticated user's ID
	UserIDKey = "userID"
	// UserPhoneKey is the context key for storing the authenticated user's phone
	UserPhoneKey = "userPhone"
	// UserRoleKey is the context key for storing the authenticated user's role
	UserRoleKey = "userRole"
	// LoggerKey is the context key for the request scoped logger
	LoggerKey = "logger"
)

// Roles a user may hold.
const (
	RoleFarmer = "farmer"
	RoleTrader = "trader"
)

// Default regional values shared by several feature packages.
const (
	DefaultDistrict = "Sehore"
	DefaultState    = "Madhya Pradesh"
)
