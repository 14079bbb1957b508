package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vogiaan1904/ticketbottle-waitlist/config"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/booking"
	grpcDelivery "github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/grpc"
	httpDelivery "github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/logging"
	kafkaInfra "github.com/vogiaan1904/ticketbottle-waitlist/internal/infra/kafka"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/service"
	pkgLog "github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

type notifier interface {
	service.NotificationRouter
	service.EventPublisher
}

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the waitlist API, sweeper and offer-reply consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, l, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "create the Postgres schema on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, l pkgLog.Logger, migrate bool) error {
	st, err := openStores(ctx, cfg, l, migrate)
	if err != nil {
		return err
	}
	defer st.close()

	var notif notifier = logging.NewNotifier(l)
	if cfg.Kafka.Enabled {
		syncProd, err := kafkaInfra.ConnectProducer(ctx, cfg.Kafka, l)
		if err != nil {
			return err
		}
		prod := producer.NewProducer(syncProd, l)
		defer prod.Close()
		notif = prod
	}

	holds, err := service.NewHoldRegistry(cfg.Waitlist.HeldEvents)
	if err != nil {
		l.Warnf(ctx, "Ignoring held events: %v", err)
	}

	creds := service.WithDefaultCredential(st.credentials, cfg.Booking.DefaultCookie)
	tokens := service.NewOfferTokens(cfg.OfferToken.Secret, time.Now)

	engine := service.NewQueueEngine(st.waitlist, notif, notif, l, cfg.Waitlist.MaxSize, time.Now)
	coord := service.NewOfferCoordinator(
		engine,
		booking.New(cfg.Booking, l),
		creds,
		notif,
		tokens,
		holds,
		l,
		service.OfferConfig{
			OfferTimeout:          cfg.Waitlist.OfferTimeout,
			RateLimitCooldown:     cfg.Waitlist.RateLimitCooldown,
			ReofferAfterTimeout:   cfg.Waitlist.ReofferAfterTimeout,
			SkipWithoutCredential: cfg.Waitlist.SkipWithoutCredential,
		},
		time.Now,
	)
	sweep := service.NewSweeper(engine, coord, l, service.SweeperConfig{
		Interval:        cfg.Waitlist.SweepInterval,
		Concurrency:     cfg.Waitlist.SweepConcurrency,
		TickTimeout:     cfg.Waitlist.TickTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	wlSvc := service.NewWaitlistService(engine, coord, creds, tokens, sweep, l)

	if err := wlSvc.StartSweeper(ctx); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}

	var cons *consumer.Consumer
	if cfg.Kafka.Enabled {
		consGr, err := kafkaInfra.ConnectConsumer(ctx, cfg.Kafka, l)
		if err != nil {
			return err
		}
		cons = consumer.NewConsumer(consGr, wlSvc, l)
		if err := cons.Start(ctx); err != nil {
			return err
		}
	}

	// gRPC health
	lnr, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRpcPort))
	if err != nil {
		return fmt.Errorf("gRPC server failed to listen: %w", err)
	}
	health := grpcDelivery.NewServer(l)
	go func() {
		l.Infof(ctx, "gRPC server is listening on port: %d", cfg.Server.GRpcPort)
		if err := health.Serve(lnr); err != nil {
			l.Errorf(ctx, "Failed to serve gRPC: %v", err)
		}
	}()

	// HTTP API
	e := httpDelivery.NewServer(httpDelivery.NewHandler(wlSvc, l))
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	go func() {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf(ctx, "Failed to serve HTTP: %v", err)
		}
	}()

	health.SetServing(true)
	<-ctx.Done()

	l.Info(context.Background(), "Server shutting down...")
	health.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Warnf(shutdownCtx, "HTTP shutdown: %v", err)
	}
	if cons != nil {
		if err := cons.Close(); err != nil {
			l.Warnf(shutdownCtx, "Kafka consumer close: %v", err)
		}
	}
	if err := wlSvc.StopSweeper(); err != nil {
		l.Warnf(shutdownCtx, "Sweeper stop: %v", err)
	}
	health.GracefulStop()

	l.Info(context.Background(), "Server exited")
	return nil
}
