package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBConnections   *prometheus.GaugeVec

	AppointmentsCreated  *prometheus.CounterVec
	AppointmentConflicts *prometheus.CounterVec
	StatusTransitions    *prometheus.CounterVec

	serviceName string
}

// New регистрирует коллекторы в reg
// В production передается prometheus.DefaultRegisterer, в тестах - prometheus.NewRegistry()
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		DBConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),

		AppointmentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total number of created appointments",
		}, []string{"service"}),

		AppointmentConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_conflicts_total",
			Help: "Total number of appointment requests rejected with a schedule conflict",
		}, []string{"service"}),

		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_status_transitions_total",
			Help: "Total number of appointment status transitions",
		}, []string{"service", "status"}),
	}
}

// ServiceName возвращает имя сервиса, которым помечаются метрики
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// AppointmentCreated увеличивает счетчик созданных записей
func (m *Metrics) AppointmentCreated() {
	m.AppointmentsCreated.WithLabelValues(m.serviceName).Inc()
}

// AppointmentConflict увеличивает счетчик отклоненных из-за конфликта записей
func (m *Metrics) AppointmentConflict() {
	m.AppointmentConflicts.WithLabelValues(m.serviceName).Inc()
}

// StatusChanged увеличивает счетчик переходов в статус
func (m *Metrics) StatusChanged(status string) {
	m.StatusTransitions.WithLabelValues(m.serviceName, status).Inc()
}
