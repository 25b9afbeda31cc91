package usecase

import (
	"context"
	"sync"
	"time"

	"clip-and-ship/domain/model"
	"clip-and-ship/domain/repository"
	"clip-and-ship/infrastructure/logger"
)

// Health statuses.
const (
	HealthUp   = "up"
	HealthDown = "down"
)

// Probe checks one dependency.
type Probe struct {
	Component string
	Ping      func(ctx context.Context) error
}

// ComponentHealth is the outcome of one probe.
type ComponentHealth struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthReport aggregates every probe.
type HealthReport struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

type IHealthUsecase interface {
	Check(ctx context.Context) *HealthReport
}

type HealthUsecase struct {
	probes []Probe
	audit  repository.IAuditLog
}

// NewHealthUsecase builds a checker. audit may be nil.
func NewHealthUsecase(audit repository.IAuditLog, probes ...Probe) *HealthUsecase {
	return &HealthUsecase{probes: probes, audit: audit}
}

func (u *HealthUsecase) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:     HealthUp,
		Components: make(map[string]ComponentHealth, len(u.probes)),
		CheckedAt:  time.Now().UTC(),
	}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range u.probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			res := runProbe(ctx, p)
			mu.Lock()
			report.Components[p.Component] = res
			if res.Status != HealthUp {
				report.Status = HealthDown
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if u.audit != nil {
		for name, res := range report.Components {
			entry := &model.HealthCheckLog{Component: name, Status: res.Status, LatencyMS: res.LatencyMS}
			if res.Error != "" {
				detail := res.Error
				entry.Details = &detail
			}
			if err := u.audit.RecordHealthCheck(ctx, entry); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Unable to record health check")
				break
			}
		}
	}
	return report
}

func runProbe(ctx context.Context, p Probe) ComponentHealth {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	start := time.Now()
	err := p.Ping(pctx)
	res := ComponentHealth{Status: HealthUp, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = HealthDown
		res.Error = err.Error()
		logger.GetLogger().WithFields(map[string]interface{}{
			"component": p.Component,
			"error":     err,
		}).Warn("Health probe failed")
	}
	return res
}
