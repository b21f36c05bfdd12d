package settle

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"poker-platform/internal/storage"
)

// KafkaPublisherConfig configures the settlement Kafka producer.
type KafkaPublisherConfig struct {
	Brokers        []string
	Topic          string
	MaxRetries     int
	RetryBackoff   time.Duration
	FlushFrequency time.Duration
	FlushMessages  int
	RequiredAcks   sarama.RequiredAcks
	Compression    sarama.CompressionCodec
	AsyncMode      bool
}

// KafkaPublisher publishes flushed settlement batches to Kafka for
// downstream persistence and audit.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	async    sarama.AsyncProducer
	topic    string
	mu       sync.RWMutex
	closed   bool
	stats    *PublisherStats
}

// PublisherStats tracks Kafka publisher statistics.
type PublisherStats struct {
	MessagesSent    int64
	MessagesFailed  int64
	BytesSent       int64
	LastMessageTime time.Time
}

// settlementMessage is the wire format for a published settlement batch.
type settlementMessage struct {
	SessionID       string     `json:"session_id"`
	HandNumbers     []int64    `json:"hand_numbers"`
	WinnersPerHand  [][]string `json:"winners_per_hand"`
	AmountsPerHand  [][]int64  `json:"amounts_per_hand"`
	ActionLogHashes []string   `json:"action_log_hashes"`
	Players         []string   `json:"players"`
	ChipDeltas      []int64    `json:"chip_deltas"`
	MerkleRoot      string     `json:"merkle_root"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewKafkaPublisher creates a new settlement Kafka publisher.
func NewKafkaPublisher(config KafkaPublisherConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Producer.Flush.Frequency = config.FlushFrequency
	saramaConfig.Producer.Flush.Messages = config.FlushMessages
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.Compression

	if config.RequiredAcks == sarama.WaitForAll {
		saramaConfig.Producer.Idempotent = true
		saramaConfig.Net.MaxOpenRequests = 1
	}

	var producer sarama.SyncProducer
	var async sarama.AsyncProducer
	var err error

	if config.AsyncMode {
		async, err = sarama.NewAsyncProducer(config.Brokers, saramaConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create async Kafka producer: %w", err)
		}
	} else {
		producer, err = sarama.NewSyncProducer(config.Brokers, saramaConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create sync Kafka producer: %w", err)
		}
	}

	p := &KafkaPublisher{
		producer: producer,
		async:    async,
		topic:    config.Topic,
		stats:    &PublisherStats{},
	}

	if async != nil {
		go p.handleErrors()
	}

	return p, nil
}

func (p *KafkaPublisher) handleErrors() {
	for range p.async.Errors() {
		p.mu.Lock()
		p.stats.MessagesFailed++
		p.mu.Unlock()
	}
}

// Publish sends one settlement record to Kafka, keyed by session ID.
func (p *KafkaPublisher) Publish(record storage.SettlementRecord) error {
	msg := buildSettlementMessage(record)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal settlement message: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(msg.SessionID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}

	if p.async != nil {
		p.async.Input() <- kafkaMsg
		p.mu.Lock()
		p.stats.MessagesSent++
		p.stats.BytesSent += int64(len(data))
		p.stats.LastMessageTime = time.Now()
		p.mu.Unlock()
		return nil
	}

	if p.producer == nil {
		return fmt.Errorf("producer is not configured")
	}

	if _, _, err := p.producer.SendMessage(kafkaMsg); err != nil {
		p.mu.Lock()
		p.stats.MessagesFailed++
		p.mu.Unlock()
		return fmt.Errorf("send settlement message to Kafka: %w", err)
	}

	p.mu.Lock()
	p.stats.MessagesSent++
	p.stats.BytesSent += int64(len(data))
	p.stats.LastMessageTime = time.Now()
	p.mu.Unlock()

	return nil
}

// GetStats returns current publisher statistics.
func (p *KafkaPublisher) GetStats() PublisherStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.stats
}

// Close shuts down the publisher gracefully.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	if p.producer != nil {
		err = p.producer.Close()
	}
	if p.async != nil {
		asyncErr := p.async.Close()
		if err == nil {
			err = asyncErr
		}
	}
	return err
}

// EnsureTopic creates the settlement topic if it doesn't exist.
func EnsureTopic(brokers []string, topic string, partitions int32, replicationFactor int16) error {
	config := sarama.NewConfig()
	config.Version = sarama.V2_0_0_0

	admin, err := sarama.NewClusterAdmin(brokers, config)
	if err != nil {
		return fmt.Errorf("failed to create cluster admin: %w", err)
	}
	defer admin.Close()

	detail := &sarama.TopicDetail{
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}

	err = admin.CreateTopic(topic, detail, false)
	if err != nil {
		if topicErr, ok := err.(*sarama.TopicError); ok && topicErr.Err == sarama.ErrTopicAlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

func buildSettlementMessage(record storage.SettlementRecord) settlementMessage {
	hashes := make([]string, len(record.ActionLogHashes))
	for i, h := range record.ActionLogHashes {
		hashes[i] = fmt.Sprintf("%x", h)
	}

	return settlementMessage{
		SessionID:       fmt.Sprintf("%x", record.SessionID),
		HandNumbers:     record.HandNumbers,
		WinnersPerHand:  record.WinnersPerHand,
		AmountsPerHand:  record.AmountsPerHand,
		ActionLogHashes: hashes,
		Players:         record.Players,
		ChipDeltas:      record.ChipDeltas,
		MerkleRoot:      fmt.Sprintf("%x", record.MerkleRoot),
		CreatedAt:       record.CreatedAt,
	}
}
