package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// pinger is implemented by stores backed by a remote database.
type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler reports engine version, database reachability and host memory.
func (s *server) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{
		"status":    "ok",
		"tesseract": s.version,
	}
	code := http.StatusOK

	if p, ok := s.store.(pinger); ok {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Str("component", "HEALTH").Err(err).Msg("database ping failed")
			body["status"] = "degraded"
			body["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			body["database"] = "ok"
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		body["memory"] = gin.H{
			"total_bytes":     vm.Total,
			"available_bytes": vm.Available,
			"used_percent":    vm.UsedPercent,
		}
	} else {
		zerolog.Ctx(ctx).Debug().Str("component", "HEALTH").Err(err).Msg("host memory unavailable")
	}
	c.JSON(code, body)
}
