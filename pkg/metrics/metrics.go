package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты бизнес-операций для меток метрик
const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec

	bookingsTotal    *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	slotCacheTotal   *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики в указанном реестре (используется в тестах)
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		dbConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: labels,
		}, []string{"state"}),
		bookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointments_booked_total",
			Help:        "Booking attempts by result",
			ConstLabels: labels,
		}, []string{"result"}),
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_transitions_total",
			Help:        "Appointment lifecycle transitions by operation and result",
			ConstLabels: labels,
		}, []string{"operation", "result"}),
		slotCacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_cache_requests_total",
			Help:        "Available slots cache lookups by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	m.dbConnections.WithLabelValues("open").Set(float64(open))
	m.dbConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(idle))
}

// RecordBooking фиксирует результат попытки бронирования
func (m *Metrics) RecordBooking(result string) {
	m.bookingsTotal.WithLabelValues(result).Inc()
}

// RecordTransition фиксирует результат перехода статуса записи
func (m *Metrics) RecordTransition(operation, result string) {
	m.transitionsTotal.WithLabelValues(operation, result).Inc()
}

// RecordSlotCache фиксирует попадание или промах кэша слотов
func (m *Metrics) RecordSlotCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.slotCacheTotal.WithLabelValues(outcome).Inc()
}

// Noop реализация бизнес-метрик для запуска без prometheus
type Noop struct{}

func (Noop) RecordBooking(string)            {}
func (Noop) RecordTransition(string, string) {}
func (Noop) RecordSlotCache(bool)            {}
