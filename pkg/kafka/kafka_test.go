package kafka_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Astemirdum/bookstore/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()
	mp := mocks.NewAsyncProducer(t, nil)
	mp.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != kafka.ActivityTopic {
			return errors.Errorf("unexpected topic %s", msg.Topic)
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var e kafka.Event
		if err = json.Unmarshal(raw, &e); err != nil {
			return err
		}
		if e.EventType != kafka.CartItemAdded || e.Quantity != 2 || e.Timestamp.IsZero() {
			return errors.Errorf("unexpected event %+v", e)
		}
		return nil
	})
	mp.ExpectInputAndFail(errors.New("broker down"))

	p := kafka.NewPublisher(mp, kafka.ActivityTopic, zap.NewExample())
	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, kafka.Event{EventType: kafka.CartItemAdded, UserID: "u1", BookID: "b1", Quantity: 2}))
	require.NoError(t, p.Publish(ctx, kafka.Event{EventType: kafka.CartCleared, UserID: "u1"}))
	require.NoError(t, p.Close())
}

func TestNopPublisherAndConfig(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, kafka.NopPublisher{}.Publish(ctx, kafka.Event{}))
	require.False(t, kafka.Config{}.Enabled())
	require.True(t, kafka.Config{Addrs: []string{"localhost:9092"}}.Enabled())
}
