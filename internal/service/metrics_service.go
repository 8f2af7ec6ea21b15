package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

// MetricsService encapsulates Prometheus instrumentation for storage units,
// logins and workout completion.
type MetricsService struct {
	registry         *prometheus.Registry
	unitDuration     *prometheus.HistogramVec
	unitTotal        *prometheus.CounterVec
	authTotal        *prometheus.CounterVec
	workoutsFinished prometheus.Counter
	recoveries       prometheus.Counter

	unitErrorCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	unitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_unit_duration_seconds",
		Help:    "Duration of whole-unit reads and writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "unit"})

	unitTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_unit_operations_total",
		Help: "Total whole-unit reads and writes by result",
	}, []string{"op", "unit", "result"})

	authTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Login attempts by account kind and result",
	}, []string{"account", "result"})

	workoutsFinished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workouts_finished_total",
		Help: "Total finished workouts",
	})

	recoveries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "password_recoveries_total",
		Help: "Total temporary passwords issued",
	})

	registry.MustRegister(unitDuration, unitTotal, authTotal, workoutsFinished, recoveries)

	return &MetricsService{
		registry:         registry,
		unitDuration:     unitDuration,
		unitTotal:        unitTotal,
		authTotal:        authTotal,
		workoutsFinished: workoutsFinished,
		recoveries:       recoveries,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveUnitOperation records one storage unit read or write. Ledger units
// are grouped under a single label to keep cardinality independent of the
// number of trainers.
func (m *MetricsService) ObserveUnitOperation(op, key string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	unit := "trainers"
	if strings.HasSuffix(key, "_students") {
		unit = "ledger"
	}
	result := "ok"
	switch {
	case errors.Is(err, appErrors.ErrUnitNotFound):
		result = "missing"
	case err != nil:
		result = "error"
		atomic.AddUint64(&m.unitErrorCount, 1)
	}
	m.unitDuration.WithLabelValues(op, unit).Observe(duration.Seconds())
	m.unitTotal.WithLabelValues(op, unit, result).Inc()
}

// RecordAuthAttempt counts a trainer or student login attempt.
func (m *MetricsService) RecordAuthAttempt(account string, success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.authTotal.WithLabelValues(account, result).Inc()
}

// RecordWorkoutFinished counts a finish transition.
func (m *MetricsService) RecordWorkoutFinished() {
	if m == nil {
		return
	}
	m.workoutsFinished.Inc()
}

// RecordRecovery counts an issued temporary password.
func (m *MetricsService) RecordRecovery() {
	if m == nil {
		return
	}
	m.recoveries.Inc()
}

// UnitErrors returns how many unit operations failed since start. Reads of
// units that were never written do not count.
func (m *MetricsService) UnitErrors() uint64 {
	if m == nil {
		return 0
	}
	return atomic.LoadUint64(&m.unitErrorCount)
}

// WriteText dumps every metric family in the Prometheus text format.
func (m *MetricsService) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
