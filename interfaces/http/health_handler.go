package http

import (
	"net/http"

	"clip-and-ship/usecase"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
	Ready(c *gin.Context)
}

type HealthHandler struct {
	healthUsecase usecase.IHealthUsecase
}

func NewHealthHandler(healthUsecase usecase.IHealthUsecase) IHealthHandler {
	return &HealthHandler{healthUsecase: healthUsecase}
}

// Healthz returns OK for liveness checks
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready probes every dependency and answers 503 when one is down.
func (h *HealthHandler) Ready(ctx *gin.Context) {
	report := h.healthUsecase.Check(ctx.Request.Context())
	status := http.StatusOK
	if report.Status != usecase.HealthUp {
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, report)
}
