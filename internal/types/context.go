package types

import "context"

type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
)

const (
	DefaultUserID = "system"
)

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxRequestID).(string); ok {
		return id
	}
	return ""
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxUserID).(string); ok && id != "" {
		return id
	}
	return DefaultUserID
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}
