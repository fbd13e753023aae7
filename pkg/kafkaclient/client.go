// Package kafkaclient wraps segmentio/kafka-go with a consumer loop that
// hands messages out over a channel and a producer for change signals.
package kafkaclient

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaReader is the subset of *kafka.Reader the consumer needs, so tests can
// swap in a fake.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer runs a fetch loop in its own goroutine and exposes the
// fetched messages on Messages. Offsets are committed explicitly.
type KafkaConsumer struct {
	reader KafkaReader
	// messageChan is closed when the fetch loop exits.
	messageChan chan kafka.Message
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	stopOnce    sync.Once
	// retryDelay is the pause after a failed fetch.
	retryDelay time.Duration
}

// NewKafkaConsumer creates a consumer-group reader for topic on broker.
func NewKafkaConsumer(topic, groupID, broker string) (*KafkaConsumer, error) {
	if topic == "" || groupID == "" || broker == "" {
		return nil, errors.New("kafka consumer needs a topic, a group id and a broker")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Offsets are committed by CommitOffset only.
		CommitInterval: 0,
		// Change signals are tiny; do not wait for a batch to fill.
		MinBytes: 1,
		MaxBytes: 1e6,
		MaxWait:  500 * time.Millisecond,
	})
	return newConsumer(reader), nil
}

func newConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:      reader,
		messageChan: make(chan kafka.Message),
		retryDelay:  time.Second,
	}
}

// Messages returns the channel fetched messages are delivered on.
func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

// CommitOffset acknowledges msg.
func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the fetch loop. It must be called at most once.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	ctx, kc.cancel = context.WithCancel(ctx)
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		log.Println("Starting Kafka consumer loop...")
		for {
			msg, err := kc.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					log.Println("Kafka consumer loop stopped.")
					return
				}
				log.Printf("Error fetching message: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(kc.retryDelay):
				}
				continue
			}

			select {
			case kc.messageChan <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the fetch loop, waits for it and closes the reader. It is safe to
// call more than once and before StartConsuming.
func (kc *KafkaConsumer) Stop() {
	kc.stopOnce.Do(func() {
		if kc.cancel != nil {
			kc.cancel()
		}
		kc.wg.Wait()
		if err := kc.reader.Close(); err != nil {
			log.Printf("Failed to close Kafka reader: %v", err)
		}
	})
}
