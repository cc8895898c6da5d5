package metrics

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP/gRPC 请求指标
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of requests",
		},
		[]string{"service", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	// 消息队列指标
	KafkaMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_total",
			Help: "Total number of Kafka messages",
		},
		[]string{"service", "topic", "status"},
	)

	// 业务指标
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Password authentication attempts by outcome",
		},
		[]string{"outcome"},
	)

	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "User registrations by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	GuardDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_decisions_total",
			Help: "Access guard decisions by outcome",
		},
		[]string{"outcome"},
	)

	ChatRelays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relays_total",
			Help: "Prompts relayed to the completion service by status",
		},
		[]string{"status"},
	)
)

func init() {
	// 注册所有指标
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		KafkaMessagesTotal,
		AuthAttempts,
		Registrations,
		GuardDecisions,
		ChatRelays,
	)
}

// RegisterDBStats exposes connection pool gauges read from db at scrape time.
func RegisterDBStats(service string, db *sql.DB) error {
	gauge := func(state string, read func(sql.DBStats) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "database_connections",
				Help:        "Current database connections",
				ConstLabels: prometheus.Labels{"service": service, "state": state},
			},
			func() float64 { return float64(read(db.Stats())) },
		)
	}
	for _, c := range []prometheus.Collector{
		gauge("open", func(s sql.DBStats) int { return s.OpenConnections }),
		gauge("in_use", func(s sql.DBStats) int { return s.InUse }),
		gauge("idle", func(s sql.DBStats) int { return s.Idle }),
	} {
		if err := prometheus.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}
	return nil
}

// StartMetricsServer 启动独立的 metrics HTTP 服务器，返回的 server 由调用方负责关闭
func StartMetricsServer(port string, onError func(error)) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			onError(err)
		}
	}()
	return srv
}

// RecordRequest 记录请求指标的助手函数
func RecordRequest(service, method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(service, method, status).Inc()
	RequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}
