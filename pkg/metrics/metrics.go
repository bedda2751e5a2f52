package metrics

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus метрик сервиса
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec

	dbOpenConnections *prometheus.GaugeVec
	dbInUse           *prometheus.GaugeVec
	dbIdle            *prometheus.GaugeVec
	dbWaitCount       *prometheus.GaugeVec

	appointmentEvents *prometheus.CounterVec
	conflicts         *prometheus.CounterVec
}

// New создает и регистрирует метрики в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в указанном реестре.
// Повторная регистрация переиспользует уже зарегистрированные коллекторы.
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests.",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database statement latency.",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database statements.",
			ConstLabels: labels,
		}, []string{"operation"}),
		dbOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections.",
			ConstLabels: labels,
		}, nil),
		dbInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use.",
			ConstLabels: labels,
		}, nil),
		dbIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections.",
			ConstLabels: labels,
		}, nil),
		dbWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for.",
			ConstLabels: labels,
		}, nil),
		appointmentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_events_total",
			Help:        "Appointment lifecycle events dispatched.",
			ConstLabels: labels,
		}, []string{"event"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_conflicts_total",
			Help:        "Slot conflicts detected by operation.",
			ConstLabels: labels,
		}, []string{"operation"}),
	}

	m.httpRequests = register(reg, m.httpRequests)
	m.httpDuration = register(reg, m.httpDuration)
	m.dbQueryDuration = register(reg, m.dbQueryDuration)
	m.dbQueryErrors = register(reg, m.dbQueryErrors)
	m.dbOpenConnections = register(reg, m.dbOpenConnections)
	m.dbInUse = register(reg, m.dbInUse)
	m.dbIdle = register(reg, m.dbIdle)
	m.dbWaitCount = register(reg, m.dbWaitCount)
	m.appointmentEvents = register(reg, m.appointmentEvents)
	m.conflicts = register(reg, m.conflicts)

	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// RecordHTTPRequest фиксирует HTTP запрос
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDBQuery фиксирует выполнение SQL запроса
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		m.dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// UpdateDBPoolStats обновляет метрики пула соединений
func (m *Metrics) UpdateDBPoolStats(stats sql.DBStats) {
	m.dbOpenConnections.WithLabelValues().Set(float64(stats.OpenConnections))
	m.dbInUse.WithLabelValues().Set(float64(stats.InUse))
	m.dbIdle.WithLabelValues().Set(float64(stats.Idle))
	m.dbWaitCount.WithLabelValues().Set(float64(stats.WaitCount))
}

// IncAppointmentEvent увеличивает счетчик событий жизненного цикла записи
func (m *Metrics) IncAppointmentEvent(event string) {
	m.appointmentEvents.WithLabelValues(event).Inc()
}

// IncConflict увеличивает счетчик обнаруженных конфликтов
func (m *Metrics) IncConflict(operation string) {
	m.conflicts.WithLabelValues(operation).Inc()
}
