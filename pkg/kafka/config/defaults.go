package kafka_config

import "time"

const (
	// Empty default keeps event publishing disabled until brokers are
	// configured; the service falls back to a no-op notifier.
	DefaultKafkaBrokers = ""

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)
