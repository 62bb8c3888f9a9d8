//go:build integration

package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"notify_hub/internal/config"
	"notify_hub/internal/domain"
	"notify_hub/internal/queue"
)

func TestPublisherIntegration(t *testing.T) {
	ctx := context.Background()
	amqpURL := startRabbitMQ(t, ctx)

	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(ctx) }()

	cfg := &config.Config{
		RabbitMQURL:      amqpURL,
		RabbitExchange:   "domain-events",
		RabbitQueue:      "notify-hub.publisher-test",
		RabbitRoutingKey: "notification.*",
	}

	publisher := NewPublisher(cfg, zap.NewNop())

	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	err = ch.ExchangeDeclare(cfg.RabbitExchange, "topic", true, false, false, false, nil)
	require.NoError(t, err)
	_, err = ch.QueueDeclare(cfg.RabbitQueue, true, false, false, false, nil)
	require.NoError(t, err)
	err = ch.QueueBind(cfg.RabbitQueue, cfg.RabbitRoutingKey, cfg.RabbitExchange, false, nil)
	require.NoError(t, err)

	deliveries, err := ch.Consume(cfg.RabbitQueue, "publisher-test", true, false, false, false, nil)
	require.NoError(t, err)

	ev := queue.Event{
		UserID:     "user-b",
		SenderID:   "user-a",
		ObjectType: domain.ObjectTypeInvitation,
		ObjectID:   "invite-1",
		Message:    "You have an invite to Core from Alice",
		Kind:       domain.EventKindInvite,
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	spanCtx, span := tp.Tracer("test").Start(ctx, "publish")
	err = publisher.Publish(spanCtx, body, queue.RoutingKey("notification", domain.EventKindInvite))
	span.End()
	require.NoError(t, err)

	select {
	case msg := <-deliveries:
		var got queue.Event
		require.NoError(t, json.Unmarshal(msg.Body, &got))
		require.Equal(t, ev, got)
		require.Equal(t, "notification.invite", msg.RoutingKey)
		require.Contains(t, msg.Headers, "traceparent")
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for published message")
	}
}

// startRabbitMQ is defined in testhelpers_integration.go
