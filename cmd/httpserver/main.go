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
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pricingv1 "github.com/milad/joienergy/api/pricing/v1"
	"github.com/milad/joienergy/internal/config"
	"github.com/milad/joienergy/internal/logging"
	httpserver "github.com/milad/joienergy/internal/transport/http"
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
		cfgFile  string
		addr     string
		grpcAddr string
	)
	cmd := &cobra.Command{
		Use:   "httpserver",
		Short: "Serve the JOI Energy REST API in front of the gRPC pricing service",
		Long: `httpserver translates the REST endpoints into calls to grpcserver.

Examples:
  httpserver --config config.yaml
  httpserver --addr :8080 --grpc 127.0.0.1:9090`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			if grpcAddr != "" {
				cfg.HTTP.GRPCTarget = grpcAddr
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "gRPC target host:port (overrides http.grpc_target)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logging.Initialize(cfg.Logging, "httpserver")
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()

	conn, err := grpc.NewClient(cfg.HTTP.GRPCTarget, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial gRPC %q: %w", cfg.HTTP.GRPCTarget, err)
	}
	defer conn.Close()

	// Reduce docker-compose race: wait a bit for gRPC to be ready.
	waitForGRPC(ctx, conn, cfg.HTTP.GRPCWait, log)

	srv := httpserver.New(pricingv1.NewPricingServiceClient(conn),
		httpserver.WithLogger(logging.Named("http")),
		httpserver.WithUpstreamTimeout(cfg.HTTP.UpstreamTimeout),
	)

	h := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %q: %w", cfg.HTTP.Addr, err)
	}
	log.Info("HTTP listening", zap.String("addr", cfg.HTTP.Addr), zap.String("grpc_target", cfg.HTTP.GRPCTarget))

	go func() {
		<-ctx.Done()
		log.Info("shutting down HTTP")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(shutdownCtx)
	}()

	if err := h.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func waitForGRPC(ctx context.Context, conn *grpc.ClientConn, maxWait time.Duration, log *zap.Logger) {
	if maxWait <= 0 {
		return
	}

	hc := healthpb.NewHealthClient(conn)
	deadline := time.Now().Add(maxWait)

	backoff := 100 * time.Millisecond
	for {
		if ctx.Err() != nil {
			return
		}

		reqCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		_, err := hc.Check(reqCtx, &healthpb.HealthCheckRequest{Service: pricingv1.ServiceName})
		cancel()
		if err == nil {
			log.Info("gRPC is ready")
			return
		}

		if time.Now().After(deadline) {
			log.Warn("gRPC not ready, continuing anyway", zap.Duration("waited", maxWait), zap.Error(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, time.Second)
	}
}
