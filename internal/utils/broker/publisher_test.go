package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"beautyfood-backend/internal/utils/logger"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu        sync.Mutex
	closed    bool
	notify    []chan *amqp.Error
	published []string
}

func (c *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (c *fakeChannel) Publish(_, key string, _, _ bool, _ amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return amqp.ErrClosed
	}
	c.published = append(c.published, key)
	return nil
}

func (c *fakeChannel) NotifyClose(ch chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = append(c.notify, ch)
	return ch
}

// shutdown mimics the server closing the channel.
func (c *fakeChannel) shutdown(reason *amqp.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, ch := range c.notify {
		ch <- reason
	}
}

type fakeConnection struct {
	closed   bool
	channels []*fakeChannel
}

func (c *fakeConnection) Channel() (amqpChannel, error) {
	ch := &fakeChannel{}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConnection) NotifyClose(ch chan *amqp.Error) chan *amqp.Error { return ch }

func (c *fakeConnection) IsClosed() bool { return c.closed }

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

func newFakePublisher(t *testing.T) (*amqpPublisher, *[]*fakeConnection) {
	var conns []*fakeConnection
	p := &amqpPublisher{
		url:      "amqp://fake",
		exchange: "beautyfood.events",
		log:      logger.Discard(),
		dial: func(string) (amqpConnection, error) {
			conn := &fakeConnection{}
			conns = append(conns, conn)
			return conn, nil
		},
	}
	require.NoError(t, p.connect())
	return p, &conns
}

func TestNewPublisher_EmptyURLDropsEvents(t *testing.T) {
	p, err := NewPublisher("", "", logger.Discard())
	require.NoError(t, err)

	assert.NoError(t, p.Publish(context.Background(), RoutingMealAnalyzed, map[string]string{"meal_id": "x"}))
	assert.NoError(t, p.Close())
}

func TestPublish_ReopensChannelAfterServerClose(t *testing.T) {
	ctx := context.Background()
	p, conns := newFakePublisher(t)
	conn := (*conns)[0]

	require.NoError(t, p.Publish(ctx, RoutingMealAnalyzed, map[string]string{"meal_id": "1"}))
	require.Len(t, conn.channels, 1)

	conn.channels[0].shutdown(&amqp.Error{Code: amqp.PreconditionFailed, Reason: "PRECONDITION_FAILED"})
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.channel == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Publish(ctx, RoutingMealAnalyzed, map[string]string{"meal_id": "2"}))
	assert.Len(t, *conns, 1)
	require.Len(t, conn.channels, 2)
	assert.Equal(t, []string{RoutingMealAnalyzed}, conn.channels[0].published)
	assert.Equal(t, []string{RoutingMealAnalyzed}, conn.channels[1].published)
}

func TestPublish_RedialsAfterConnectionClose(t *testing.T) {
	ctx := context.Background()
	p, conns := newFakePublisher(t)

	(*conns)[0].closed = true
	require.NoError(t, p.Publish(ctx, RoutingMealAnalyzed, map[string]string{"meal_id": "1"}))

	require.Len(t, *conns, 2)
	assert.Equal(t, []string{RoutingMealAnalyzed}, (*conns)[1].channels[0].published)
	assert.NoError(t, p.Close())
	assert.True(t, (*conns)[1].closed)
}
