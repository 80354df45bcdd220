package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/blockberries/pallets/config"
	palletsgrpc "github.com/blockberries/pallets/grpc"
	"github.com/blockberries/pallets/logging"
	"github.com/blockberries/pallets/metrics"
	"github.com/blockberries/pallets/node"
	"github.com/blockberries/pallets/server"
)

const shutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve the runtime over gRPC",
	Long:  `Serves the runtime service on ListenAddress and, unless MetricsAddress is empty, Prometheus metrics and a health probe over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		logger, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []node.Option{
		node.WithChainID(cfg.ChainID),
		node.WithLogger(logger),
		node.WithMetrics(metrics.New(reg)),
	}
	if cfg.GenesisFile != "" {
		data, err := os.ReadFile(cfg.GenesisFile)
		if err != nil {
			return fmt.Errorf("read genesis: %w", err)
		}
		g, err := node.ParseGenesis(data)
		if err != nil {
			return err
		}
		opts = append(opts, node.WithDefaultGenesis(g))
	}
	app := node.New(opts...)
	gs := palletsgrpc.NewGRPCServer(app, server.WithLogger(logger))

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddress, err)
	}
	grpcServer := grpc.NewServer(grpc.ForceServerCodec(palletsgrpc.CramberryCodec{}))
	gs.Register(grpcServer)

	errs := make(chan error, 2)
	go func() {
		logger.Info("runtime service listening", "addr", lis.Addr().String(), "chain_id", cfg.ChainID)
		errs <- grpcServer.Serve(lis)
	}()

	var httpServer *http.Server
	if cfg.MetricsAddress != "" {
		httpServer = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           newRouter(reg, app, gs.Server()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics listening", "addr", cfg.MetricsAddress)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}

	select {
	case err := <-errs:
		grpcServer.Stop()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", "err", err)
		}
	}
	grpcServer.GracefulStop()
	return nil
}

type health struct {
	Status      string `json:"status"`
	Height      uint64 `json:"height"`
	AppHash     string `json:"app_hash"`
	ChainID     string `json:"chain_id"`
	Initialized bool   `json:"initialized"`
}

// newRouter serves /metrics, /healthz and a JSON dump of committed state
// at /state.
func newRouter(reg *prometheus.Registry, app *node.App, srv *server.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		last := srv.LastCommit()
		writeJSON(w, health{
			Status:      "ok",
			Height:      last.Height,
			AppHash:     fmt.Sprintf("%x", last.AppHash),
			ChainID:     app.ChainID(),
			Initialized: srv.Initialized(),
		})
	})
	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, app.State())
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
