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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pricingv1 "github.com/milad/joienergy/api/pricing/v1"
	"github.com/milad/joienergy/internal/config"
	"github.com/milad/joienergy/internal/ingest"
	"github.com/milad/joienergy/internal/logging"
	"github.com/milad/joienergy/internal/repo/memrepo"
	"github.com/milad/joienergy/internal/seed"
	"github.com/milad/joienergy/internal/service"
	grpcserver "github.com/milad/joienergy/internal/transport/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		addr    string
		csvPath string
	)
	cmd := &cobra.Command{
		Use:   "grpcserver",
		Short: "Serve the JOI Energy pricing API over gRPC",
		Long: `grpcserver stores smart meter readings and prices them against the
configured price plans.

Examples:
  grpcserver --config config.yaml
  grpcserver --addr :9090 --csv readings.csv`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.GRPC.Addr = addr
			}
			if csvPath != "" {
				cfg.Seed.CSV = csvPath
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides grpc.addr)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "readings CSV to load at startup (overrides seed.csv)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logging.Initialize(cfg.Logging, "grpcserver")
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()

	store, closeStore, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closeStore()

	plans, err := cfg.Pricing.PricePlans()
	if err != nil {
		return err
	}
	catalog, err := memrepo.NewCatalog(plans...)
	if err != nil {
		return fmt.Errorf("price plan catalog: %w", err)
	}
	accounts := memrepo.NewAccounts(cfg.Pricing.Accounts)

	if _, err := seed.Run(ctx, store, accounts.MeterIDs(), seed.Options{
		CSVPath:    cfg.Seed.CSV,
		Generate:   !cfg.Seed.Disabled,
		Count:      cfg.Seed.Count,
		Interval:   cfg.Seed.Interval,
		RandomSeed: cfg.Seed.RandomSeed,
	}, logging.Named("seed")); err != nil {
		return fmt.Errorf("seed readings: %w", err)
	}

	svc := service.NewPricingService(store, accounts, catalog,
		service.WithDefaultWindow(cfg.Pricing.Window),
		service.WithLogger(logging.Named("service")),
	)

	metrics, err := grpcserver.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	g := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryInterceptor(logging.Named("grpc"))))
	pricingv1.RegisterPricingServiceServer(g, grpcserver.New(svc, logging.Named("grpc")))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(pricingv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(g, hs)

	if cfg.Ingest.Kafka.Enabled {
		consumer, err := ingest.NewConsumer(cfg.Ingest.Kafka, svc, logging.Named("ingest"))
		if err != nil {
			return err
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Error("kafka ingest stopped", zap.Error(err))
			}
		}()
		log.Info("kafka ingest started",
			zap.Strings("brokers", cfg.Ingest.Kafka.Brokers),
			zap.String("topic", cfg.Ingest.Kafka.Topic),
		)
	}

	if cfg.GRPC.MetricsAddr != "" {
		ms := &http.Server{Addr: cfg.GRPC.MetricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		defer ms.Close()
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen %q: %w", cfg.GRPC.Addr, err)
	}
	log.Info("gRPC listening", zap.String("addr", cfg.GRPC.Addr), zap.String("storage", cfg.Storage.Backend))

	go func() {
		<-ctx.Done()
		log.Info("shutting down gRPC")
		hs.Shutdown()
		ch := make(chan struct{})
		go func() {
			g.GracefulStop()
			close(ch)
		}()
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			g.Stop()
		}
	}()

	if err := g.Serve(lis); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
