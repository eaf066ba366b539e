package constants

// Context and session keys
const (
	ContextKeyUserID      = "user_id"
	ContextKeyCurrentUser = "current_user"
	ContextKeyTask        = "task"
	RequestIDHeader       = "X-Request-Id"
	SessionCookieName     = "conectahub_session"

	SessionKeyCurrentUser = "conectahub_current_user"
	SessionKeyUserName    = "user_logged"
	SessionKeyIsAdmin     = "user_is_admin"
)

// Record store keys
const (
	StorageKeyUsers    = "conectahub_users"
	StorageKeyMessages = "conectahub_messages"
	StorageKeyTasks    = "conectahub_tasks"
)

// Storage modes
const (
	StorageModeLocal  = "local"
	StorageModeRemote = "remote"
)

// Domain limits and defaults
const (
	MaxRecentActivities = 10
	MaxNotifications    = 50
	DefaultTaskPoints   = 10
	MinPasswordLength   = 6

	DefaultRole        = "Colaborador"
	DefaultPosition    = "Novo Colaborador"
	DefaultNotifyIcon  = "fa-bell"
	ActivityDateLayout = "02/01/2006, 15:04"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// XP weights used by the ranking
const (
	XPPerProductivityPoint = 5
	XPPerTask              = 10
	XPPerProject           = 50
)
