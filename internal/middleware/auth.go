package middleware

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/api/transport"
	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/pkg/httpcontext"
	authUC "github.com/taskdesk/backend/usecase/auth"
)

// SessionKey is the fasthttp user-value slot carrying the resolved session.
const SessionKey = "session"

// SessionAuth resolves the bearer token into a domain.Session and injects
// it into the request. Requests without a valid token are rejected here;
// store-level permission failures surface later as 403.
func SessionAuth(auth *authUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				reject(ctx, "missing bearer token")
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			defer cancel()

			sess, err := auth.Resolve(stdCtx, tokenString)
			if err != nil {
				logger.Warn("token rejected", zap.Error(err))
				reject(ctx, "invalid or expired token")
				return
			}

			ctx.SetUserValue(SessionKey, sess)
			next(ctx)
		}
	}
}

// SessionFrom pulls the session injected by SessionAuth, if any.
func SessionFrom(ctx *fasthttp.RequestCtx) *domain.Session {
	sess, _ := ctx.UserValue(SessionKey).(*domain.Session)
	return sess
}

func reject(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
