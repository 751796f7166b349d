package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	ctxActorKey  = "auth.actor"
)
