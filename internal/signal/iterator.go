package signal

import (
	"context"
	"log"

	"github.com/segmentio/kafka-go"
)

// MessageIterator is a source of Kafka messages with explicit offset
// commits. *kafkaclient.KafkaConsumer satisfies it.
type MessageIterator interface {
	// Messages is closed by the implementation when consumption stops.
	Messages() <-chan kafka.Message
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// DecodeFunc turns a raw message into a T.
type DecodeFunc[T any] func(msg kafka.Message) (T, error)

// Iterator decodes messages from a MessageIterator and streams the results.
// A message that fails to decode is logged and skipped without a commit.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
}

// NewIterator pairs a message source with a decoder.
func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T]) *Iterator[T] {
	return &Iterator[T]{msgIterator: iterator, decode: decode}
}

// Objects streams decoded values until the message source is exhausted. The
// offset of each message is committed after its value has been handed off.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			v, err := it.decode(msg)
			if err != nil {
				log.Printf("Skipping undecodable message at offset %d: %v", msg.Offset, err)
				continue
			}

			select {
			case out <- v:
			case <-ctx.Done():
				return
			}

			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				log.Printf("Failed to commit offset %d: %v", msg.Offset, err)
			}
		}
	}()
	return out
}
