package rabbitmq

import (
	"errors"
	"fmt"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type nackCall struct {
	tag     uint64
	requeue bool
}

// recordingAcknowledger captures what the consumer did with each delivery.
type recordingAcknowledger struct {
	acks  []uint64
	nacks []nackCall
}

func (r *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	r.acks = append(r.acks, tag)
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	r.nacks = append(r.nacks, nackCall{tag: tag, requeue: requeue})
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func TestHandleDelivery(t *testing.T) {
	transient := errors.New("downstream timeout")
	undecodable := Permanent(fmt.Errorf("decode reminder event: %w", errors.New("bad json")))

	tests := []struct {
		name        string
		redelivered bool
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{"success is acked", false, nil, true, false},
		{"transient failure is requeued once", false, transient, false, true},
		{"failed redelivery is dropped", true, transient, false, false},
		{"permanent failure is dropped", false, undecodable, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{}
			msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Redelivered: tt.redelivered}
			var reported []error

			handleDelivery(msg,
				func(amqp.Delivery) error { return tt.handlerErr },
				func(tag uint64, err error) {
					assert.Equal(t, uint64(7), tag)
					reported = append(reported, err)
				})

			if tt.wantAck {
				assert.Equal(t, []uint64{7}, ack.acks)
				assert.Empty(t, ack.nacks)
				assert.Empty(t, reported)
				return
			}
			assert.Empty(t, ack.acks)
			assert.Equal(t, []nackCall{{tag: 7, requeue: tt.wantRequeue}}, ack.nacks)
			assert.Equal(t, []error{tt.handlerErr}, reported)
		})
	}
}

func TestPermanent(t *testing.T) {
	cause := errors.New("bad json")
	err := fmt.Errorf("consume: %w", Permanent(cause))

	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsPermanent(cause))
	assert.NoError(t, Permanent(nil))
}
