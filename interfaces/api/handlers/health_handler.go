package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// HealthProbe one dependency check; Detail may be nil
type HealthProbe struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) (detail any, err error)
}

type probeResult struct {
	OK     bool   `json:"ok"`
	Detail any    `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthHandler liveness + dependency status
type HealthHandler struct {
	service string
	probes  []HealthProbe
}

func NewHealthHandler(service string, probes []HealthProbe) *HealthHandler {
	return &HealthHandler{service: service, probes: probes}
}

// Health GET /health
// always 200 while the process serves; status is "degraded" when a required probe fails
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	checks := make(map[string]probeResult, len(h.probes))
	for _, p := range h.probes {
		detail, err := p.Check(ctx)
		res := probeResult{OK: err == nil, Detail: detail}
		if err != nil {
			res.Error = err.Error()
			if p.Required {
				status = "degraded"
			}
			logger.WarnContext(ctx, "Health probe failed", "probe", p.Name, "error", err)
		}
		checks[p.Name] = res
	}

	return utils.SuccessResponse(c, fiber.Map{
		"status":  status,
		"service": h.service,
		"checks":  checks,
	})
}
