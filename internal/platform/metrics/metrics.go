package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquetes_vote_requests_total",
		Help: "Total de requisicoes de voto recebidas, por resultado",
	}, []string{"status"})

	votesAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquetes_votes_applied_total",
		Help: "Votos efetivamente contabilizados, por tipo de slide",
	}, []string{"slide_type"})

	voteProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enquetes_vote_processing_duration_seconds",
		Help:    "Tempo para aplicar um voto no armazenamento",
		Buckets: prometheus.DefBuckets,
	})

	cacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquetes_cache_operations_total",
		Help: "Operacoes no cache por tipo e resultado (hit, miss, error)",
	}, []string{"op", "result"})

	realtimePublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquetes_realtime_publish_total",
		Help: "Eventos publicados para os espectadores, por evento e resultado",
	}, []string{"event", "result"})

	lifecycleOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquetes_lifecycle_operations_total",
		Help: "Mutacoes de ciclo de vida das enquetes",
	}, []string{"op"})

	maintenanceRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquetes_maintenance_rows_total",
		Help: "Enquetes afetadas pelas rotinas de manutencao",
	}, []string{"action"})

	streamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "enquetes_stream_clients",
		Help: "Clientes conectados ao stream SSE",
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func IncVoteApplied(slideType string) {
	votesAppliedTotal.WithLabelValues(slideType).Inc()
}

func ObserveProcessingDuration(seconds float64) {
	voteProcessingDuration.Observe(seconds)
}

func ObserveCache(op, result string) {
	cacheOperationsTotal.WithLabelValues(op, result).Inc()
}

func ObservePublish(event, result string) {
	realtimePublishTotal.WithLabelValues(event, result).Inc()
}

func IncLifecycle(op string) {
	lifecycleOperationsTotal.WithLabelValues(op).Inc()
}

func AddMaintenanceRows(action string, n int) {
	maintenanceRowsTotal.WithLabelValues(action).Add(float64(n))
}

func StreamClientConnected() { streamClients.Inc() }

func StreamClientDisconnected() { streamClients.Dec() }
