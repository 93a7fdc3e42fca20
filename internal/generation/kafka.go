package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

type jobMessage struct {
	JobID string `json:"jobId"`
}

// KafkaDispatcher publishes job ids for the worker binary.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

func NewKafkaDispatcher(cfg config.KafkaConfig) *KafkaDispatcher {
	return &KafkaDispatcher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, jobID string) error {
	b, err := json.Marshal(jobMessage{JobID: jobID})
	if err != nil {
		return err
	}
	return d.writer.WriteMessages(ctx, kafka.Message{Key: []byte(jobID), Value: b})
}

func (d *KafkaDispatcher) Close() error { return d.writer.Close() }

// KafkaConsumer reads job ids and runs them. Failed attempts are counted in
// Redis per job so retries survive worker restarts.
type KafkaConsumer struct {
	reader      *kafka.Reader
	processor   Processor
	rdb         *redis.Client
	maxAttempts int
	backoff     time.Duration
}

func NewKafkaConsumer(cfg config.KafkaConfig, p Processor, rdb *redis.Client, maxAttempts int) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newKafkaConsumer(r, p, rdb, maxAttempts)
}

func newKafkaConsumer(r *kafka.Reader, p Processor, rdb *redis.Client, maxAttempts int) *KafkaConsumer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &KafkaConsumer{reader: r, processor: p, rdb: rdb, maxAttempts: maxAttempts, backoff: 2 * time.Second}
}

// Run consumes until ctx is cancelled.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	logger.Infof("kafka consumer started: topic=%s", c.reader.Config().Topic)
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}
		c.handle(ctx, m.Value)
		if ctx.Err() != nil {
			// interrupted jobs stay uncommitted and are redelivered
			return nil
		}
		if err := c.reader.CommitMessages(context.WithoutCancel(ctx), m); err != nil {
			logger.Errorf("kafka commit offset %d: %v", m.Offset, err)
		}
	}
}

func (c *KafkaConsumer) Close() error { return c.reader.Close() }

// handle runs one message until it succeeds, fails permanently or runs out of attempts.
func (c *KafkaConsumer) handle(ctx context.Context, value []byte) {
	var msg jobMessage
	if err := json.Unmarshal(value, &msg); err != nil || msg.JobID == "" {
		logger.Errorf("dropping malformed generation message: %s", string(value))
		return
	}
	key := "generation:attempts:" + msg.JobID
	for {
		err := c.processor.Process(ctx, msg.JobID)
		if err == nil {
			c.clearAttempts(ctx, key)
			return
		}
		if !Retryable(err) || ctx.Err() != nil {
			c.clearAttempts(ctx, key)
			return
		}
		if c.rdb == nil {
			logger.Warnw("no attempt counter, not retrying job", "jobId", msg.JobID, "error", err)
			return
		}
		attempts, incErr := c.rdb.Incr(ctx, key).Result()
		if incErr != nil {
			logger.Warnw("attempt counter unavailable, giving up on job", "jobId", msg.JobID, "error", incErr)
			return
		}
		_ = c.rdb.Expire(ctx, key, 24*time.Hour).Err()
		if attempts >= int64(c.maxAttempts) {
			logger.Errorw("generation job exhausted its attempts", "jobId", msg.JobID, "attempts", attempts, "error", err)
			c.clearAttempts(ctx, key)
			return
		}
		logger.Warnw("retrying generation job", "jobId", msg.JobID, "attempt", attempts, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff * time.Duration(attempts)):
		}
	}
}

func (c *KafkaConsumer) clearAttempts(ctx context.Context, key string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(context.WithoutCancel(ctx), key).Err()
}
