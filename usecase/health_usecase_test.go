package usecase_test

import (
	"context"
	"errors"
	"testing"

	"clip-and-ship/domain/model"
	"clip-and-ship/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthCheck(t *testing.T) {
	audit := new(MockAuditLog)
	ctx := context.Background()
	audit.On("RecordHealthCheck", ctx, mock.MatchedBy(func(l *model.HealthCheckLog) bool {
		return l.Component == "postgres" && l.Status == usecase.HealthUp
	})).Return(nil).Once()
	audit.On("RecordHealthCheck", ctx, mock.MatchedBy(func(l *model.HealthCheckLog) bool {
		return l.Component == "redis" && l.Status == usecase.HealthDown && l.Details != nil && *l.Details == "connection refused"
	})).Return(nil).Once()

	report := usecase.NewHealthUsecase(audit,
		usecase.Probe{Component: "postgres", Ping: func(context.Context) error { return nil }},
		usecase.Probe{Component: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
	).Check(ctx)

	assert.Equal(t, usecase.HealthDown, report.Status)
	assert.Equal(t, usecase.HealthUp, report.Components["postgres"].Status)
	assert.Equal(t, "connection refused", report.Components["redis"].Error)
	audit.AssertExpectations(t)
}

func TestHealthCheck_AllUpWithoutAudit(t *testing.T) {
	report := usecase.NewHealthUsecase(nil,
		usecase.Probe{Component: "postgres", Ping: func(context.Context) error { return nil }},
	).Check(context.Background())

	assert.Equal(t, usecase.HealthUp, report.Status)
	assert.Len(t, report.Components, 1)
}
