package constants

// HTTP Header Names
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXAdminCode    = "X-Admin-Code"
)

// Authorization scheme
const (
	BearerScheme = "Bearer"
)

// HTTP Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Response messages
const (
	MsgUserCreated          = "User created successfully"
	MsgLoginSuccessful      = "Login Successful"
	MsgLogoutSuccessful     = "Logout successful"
	MsgAlreadyLoggedOut     = "Already logged out"
	MsgAlreadyLoggedOutOrIn = "Already logged out or token invalid"
	MsgAccountDeleted       = "account successfully deleted"
	MsgEmailTaken           = "email taken"
	MsgEmailAvailable       = "email available"
	MsgNoEmailProvided      = "no email provided"
	MsgNoTokenProvided      = "No token provided"
	MsgInvalidRequest       = "Invalid request format"
	MsgInternalError        = "Internal server error"
	MsgAdminUnauthorized    = "invalid admin code"
	MsgServiceStatusOK      = "ok"
)
