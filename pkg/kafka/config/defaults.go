package kafkaconfig

import "time"

const (
	DefaultKafkaEnabled = false
	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaTopic   = "hotel.events"
	DefaultKafkaDLQ     = "hotel.events.dlq"
	DefaultKafkaGroupID = "hotel-audit"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"
	DefaultPublishTimeout       = 5 * time.Second

	DefaultBreakerFailures = 3
	DefaultBreakerTimeout  = 10 * time.Second

	DefaultConsumerStartOffset    = -2 // oldest
	DefaultConsumerMinBytes       = 1
	DefaultConsumerMaxBytes       = 10 * 1024 * 1024 // 10MB
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = 1 * time.Second
	DefaultConsumerMaxRetries     = 3
)
