package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pgstay/api/internal/business/session"
	"github.com/pgstay/api/pkg/model"
)

const (
	traceHeader = "X-Trace-ID"
	userKey     = "session.user"
	loggerKey   = "request.logger"
)

// requestLogger tags every request with a trace id and logs its outcome.
func requestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(traceHeader, traceID)

		reqLogger := base.With("trace_id", traceID)
		c.Set(loggerKey, reqLogger)

		start := time.Now()
		c.Next()

		attrs := []any{
			"http_method", c.Request.Method,
			"http_path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"bytes_written", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			reqLogger.Error("request finished", attrs...)
		default:
			reqLogger.Info("request finished", attrs...)
		}
	}
}

func loggerFrom(c *gin.Context) *slog.Logger {
	if l, ok := c.Get(loggerKey); ok {
		return l.(*slog.Logger)
	}
	return slog.Default()
}

// requireUser resolves the bearer token into a session user, records it in the
// registry and stores it on the context.
func (r *Router) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			token = ""
		}
		user, err := r.sessions.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			r.fail(c, err)
			c.Abort()
			return
		}
		r.registry.Observe(user)
		c.Set(userKey, user)
		c.Next()
	}
}

// requireOwner rejects users whose resolved role is not owner.
func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != model.RoleOwner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "owner account required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) session.User {
	if u, ok := c.Get(userKey); ok {
		return u.(session.User)
	}
	return session.User{}
}
