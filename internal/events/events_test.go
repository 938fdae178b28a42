package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &KafkaPublisher{writer: writer}

	err := publisher.Publish(context.Background(), Event{
		Type:           StakeTransferred,
		PurchaseID:     3,
		ProductID:      2,
		UserID:         1,
		CounterpartyID: 5,
		Quantity:       40,
		Amount:         "200.00",
	})
	require.NoError(t, err)
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	assert.Equal(t, "3", string(msg.Key))
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, "stake.transferred", string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 40, decoded.Quantity)
	assert.Equal(t, "200.00", decoded.Amount)
	assert.False(t, decoded.OccurredAt.IsZero())

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	publisher := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := publisher.Publish(context.Background(), Event{Type: StakeOpened, PurchaseID: 1})
	assert.EqualError(t, err, "broker down")
}

func TestNew(t *testing.T) {
	assert.IsType(t, Noop{}, New(nil, "stake-events"))
	assert.IsType(t, Noop{}, New([]string{}, "stake-events"))

	publisher := New([]string{"localhost:9092"}, "stake-events")
	assert.IsType(t, &KafkaPublisher{}, publisher)

	assert.NoError(t, Noop{}.Publish(context.Background(), Event{}))
}
