package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-ems/internal/bootstrap"
	"go-ems/internal/events"
	"go-ems/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer audits leave lifecycle events until SIGINT/SIGTERM.
func RunConsumer(cfg *Config) error {
	logger := zap.L().Named("app.consumer")

	if err := cfg.ValidateMessaging(); err != nil {
		return err
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.LeaveLifecycleTopic,
		GroupID:        cfg.KafkaConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		consumer.ConsumeLeaveLifecycle(ctx, reader, bootstrap.NewStdoutAuditLogger(logger), logger)
		close(done)
	}()

	<-ctx.Done()
	logger.Info("consumer shutting down")
	<-done
	return nil
}
