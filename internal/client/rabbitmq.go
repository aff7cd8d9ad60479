package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/krakosik/userhub/internal/dto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const reconnectDelay = 5 * time.Second

type RabbitClient interface {
	PublishMessage(ctx context.Context, routingKey string, message []byte) error
	Ping(ctx context.Context) error
	Close() error
}

type rabbitClient struct {
	url          string
	exchangeName string

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	done      chan struct{}
	closeOnce sync.Once
}

// NewRabbitMQClient never fails: when the broker is unreachable the client
// keeps retrying in the background and reports itself down through Ping.
func NewRabbitMQClient(config dto.Config) RabbitClient {
	c := &rabbitClient{
		url:          config.RabbitMQURL,
		exchangeName: config.RabbitMQExchange,
		done:         make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		logrus.Errorf("Failed to connect to RabbitMQ: %v", err)
		go c.reconnect()
		return c
	}

	go c.monitorConnection()
	return c
}

func (c *rabbitClient) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	err = ch.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	c.mu.Lock()
	oldConn, oldChannel := c.conn, c.channel
	c.conn, c.channel = conn, ch
	c.mu.Unlock()

	if oldChannel != nil {
		oldChannel.Close()
	}
	if oldConn != nil {
		oldConn.Close()
	}

	logrus.Infof("Connected to RabbitMQ exchange %q", c.exchangeName)
	return nil
}

func (c *rabbitClient) monitorConnection() {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	connCloseChan := conn.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case err := <-connCloseChan:
		logrus.Errorf("RabbitMQ connection closed: %v", err)
		c.reconnect()
	case <-c.done:
	}
}

func (c *rabbitClient) reconnect() {
	for {
		select {
		case <-c.done:
			return
		case <-time.After(reconnectDelay):
		}

		logrus.Info("Attempting to reconnect to RabbitMQ...")
		if err := c.connect(); err != nil {
			logrus.Errorf("Failed to reconnect to RabbitMQ: %v", err)
			continue
		}

		go c.monitorConnection()
		return
	}
}

func (c *rabbitClient) PublishMessage(ctx context.Context, routingKey string, message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil || c.channel.IsClosed() {
		return fmt.Errorf("%w: rabbitmq channel is not open", dto.ErrUpstream)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         message,
		})
	if err != nil {
		return fmt.Errorf("%w: publish: %v", dto.ErrUpstream, err)
	}
	return nil
}

// Ping opens and closes a throwaway channel, one round trip to the broker.
func (c *rabbitClient) Ping(ctx context.Context) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return fmt.Errorf("%w: rabbitmq is not connected", dto.ErrUpstream)
	}

	result := make(chan error, 1)
	go func() {
		ch, err := conn.Channel()
		if err != nil {
			result <- err
			return
		}
		result <- ch.Close()
	}()

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("%w: rabbitmq ping: %v", dto.ErrUpstream, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: rabbitmq ping: %v", dto.ErrUpstream, ctx.Err())
	}
}

func (c *rabbitClient) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
