package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sicua/backend/internal/interfaces/http/dto"
)

// BodyLimitOption adjusts BodyLimit
type BodyLimitOption func(*bodyLimits)

type pathLimit struct {
	prefix   string
	maxBytes int64
}

type bodyLimits struct {
	defaultMax int64
	paths      []pathLimit
}

// WithPathLimit applies maxBytes to requests whose path starts with prefix.
// The longest matching prefix wins.
func WithPathLimit(prefix string, maxBytes int64) BodyLimitOption {
	return func(l *bodyLimits) {
		l.paths = append(l.paths, pathLimit{prefix: prefix, maxBytes: maxBytes})
	}
}

func (l *bodyLimits) forPath(path string) int64 {
	limit, matched := l.defaultMax, 0
	for _, p := range l.paths {
		if strings.HasPrefix(path, p.prefix) && len(p.prefix) > matched {
			limit, matched = p.maxBytes, len(p.prefix)
		}
	}
	return limit
}

// BodyLimit rejects requests whose declared Content-Length exceeds the limit
// for their path, and caps streaming bodies while they are read. A limit of
// zero or less disables the check for that path.
func BodyLimit(maxBytes int64, opts ...BodyLimitOption) gin.HandlerFunc {
	limits := &bodyLimits{defaultMax: maxBytes}
	for _, opt := range opts {
		opt(limits)
	}

	return func(c *gin.Context) {
		limit := limits.forPath(c.Request.URL.Path)
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
