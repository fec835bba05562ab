package metrics

import "github.com/prometheus/client_golang/prometheus"

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

var FanoutRecipientsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fanout_recipients_total",
		Help: "Total number of recipients resolved per fanout target kind",
	},
	[]string{"target"},
)

var FanoutEmptyTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fanout_empty_total",
		Help: "Total number of dispatches that resolved zero recipients",
	},
	[]string{"target"},
)

var PushAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "push_attempts_total",
		Help: "Total number of push send attempts",
	},
	[]string{"status"},
)

var PushSendDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "push_send_duration_seconds",
		Help:    "Time taken to send a push message through the transport",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"status"},
)

var SubscriptionsPrunedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "subscriptions_pruned_total",
		Help: "Total number of subscriptions removed after a permanent send failure",
	},
)

var AgentPushReceivedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agent_push_received_total",
		Help: "Total number of push payloads received by the delivery agent",
	},
	[]string{"shape"},
)

var AgentClickRoutedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agent_click_routed_total",
		Help: "Total number of notification clicks routed, by outcome",
	},
	[]string{"outcome"},
)

var KafkaPublishFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_publish_failure_total",
		Help: "Total number of failed Kafka publishes",
	},
	[]string{"topic"},
)

var KafkaPublishSuccessTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_publish_success_total",
		Help: "Total number of successful Kafka publishes",
	},
	[]string{"topic"},
)

var KafkaSubscriberFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_subscriber_failure_total",
		Help: "Total number of failed Kafka reads",
	},
	[]string{"topic"},
)

var KafkaConsumerLag = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "kafka_consumer_lag",
		Help: "Current consumer lag per group and topic",
	},
	[]string{"group", "topic"},
)

var EventsDuplicateTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "events_duplicate_total",
		Help: "Total number of domain events skipped as duplicates",
	},
	[]string{"type"},
)

func InitAPIMetrics() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpErrorsTotal)
	prometheus.MustRegister(HttpRateLimitRejectionsTotal)
	prometheus.MustRegister(FanoutRecipientsTotal)
	prometheus.MustRegister(FanoutEmptyTotal)
	prometheus.MustRegister(PushAttemptsTotal)
	prometheus.MustRegister(PushSendDuration)
	prometheus.MustRegister(SubscriptionsPrunedTotal)
}

func InitAgentMetrics() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpErrorsTotal)
	prometheus.MustRegister(AgentPushReceivedTotal)
	prometheus.MustRegister(AgentClickRoutedTotal)
}

func InitKafkaMetrics() {
	prometheus.MustRegister(KafkaPublishFailureTotal)
	prometheus.MustRegister(KafkaPublishSuccessTotal)
	prometheus.MustRegister(KafkaSubscriberFailureTotal)
	prometheus.MustRegister(KafkaConsumerLag)
	prometheus.MustRegister(EventsDuplicateTotal)
}
