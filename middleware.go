package main

import (
	"net/http"
	"time"

	"checkparser/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with a ksuid and logs it once it is served.
// Handlers find the tagged logger via zerolog.Ctx(c.Request.Context()).
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ksuid.New().String()
		}
		c.Header(requestIDHeader, id)

		logger := log.With().Str("RequestID", id).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = logger.Error()
		case status >= http.StatusBadRequest:
			ev = logger.Warn()
		default:
			ev = logger.Info()
		}
		ev.Str("component", "HTTP").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	}
}

// rateLimit rejects requests with 429 once the token bucket is empty. A nil
// limiter disables it.
func rateLimit(l *rate.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l != nil && !l.Allow() {
			m.Outcome(metrics.OutcomeLimited)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many uploads, retry later"})
			return
		}
		c.Next()
	}
}
