package service

import (
	"errors"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var TaskOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_operations_total",
		Help: "Task service operations by outcome",
	},
	[]string{"operation", "result"},
)

func init() {
	prometheus.MustRegister(TaskOperations)
}

func observe(op string, err error) {
	TaskOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrVersionConflict):
		return "conflict"
	default:
		return "error"
	}
}
