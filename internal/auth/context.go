package auth

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type contextKey string

const (
	merchantKey contextKey = "merchant_id"
	userKey     contextKey = "user_id"

	MerchantHeader = "X-Merchant-ID"
	UserHeader     = "X-User-ID"
)

type UserContext struct {
	MerchantID string
	UserID     string
}

func WithMerchant(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, merchantKey, merchantID)
}

func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// GetMerchantID reads the merchant placed on the context by the HTTP
// middleware or gRPC interceptor, falling back to incoming gRPC metadata.
func GetMerchantID(ctx context.Context) string {
	if val, ok := ctx.Value(merchantKey).(string); ok {
		return val
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if val := md.Get("x-merchant-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(userKey).(string); ok {
		return val
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if val := md.Get("x-user-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

// Middleware copies the tenant headers into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if m := strings.TrimSpace(r.Header.Get(MerchantHeader)); m != "" {
			ctx = WithMerchant(ctx, m)
		}
		if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
			ctx = WithUser(ctx, u)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UnaryInterceptor is the gRPC counterpart of Middleware.
func UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if m := GetMerchantID(ctx); m != "" {
			ctx = WithMerchant(ctx, m)
		}
		if u := GetUserID(ctx); u != "" {
			ctx = WithUser(ctx, u)
		}
		return handler(ctx, req)
	}
}
