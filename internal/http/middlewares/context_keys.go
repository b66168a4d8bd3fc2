package middlewares

const (
	ctxCallerKey    = "auth.caller"
	ctxUserKey      = "auth.user"
	ctxTokenKey     = "auth.token"
	ctxRequestIDKey = "request_id"
)
