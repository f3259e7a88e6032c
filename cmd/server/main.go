package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockdrop/config"
	"blockdrop/scoreboard"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

var configFile string

var rootCmd = &cobra.Command{
	Use:   "blockdrop-server",
	Short: "Score server for BlockDrop",
	Long: `Records finished BlockDrop games and serves the scoreboard over gRPC for
the game client and over HTTP for everything else.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		v := config.New(configFile)
		for flag, key := range map[string]string{
			"grpc":     "server.grpc_address",
			"http":     "server.http_address",
			"database": "server.database",
		} {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg.Server, logger)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file")
	rootCmd.Flags().String("grpc", ":9000", "gRPC listen address")
	rootCmd.Flags().String("http", ":9001", "HTTP listen address")
	rootCmd.Flags().String("database", "", "sqlite file, empty keeps the scores in memory")
}

func serve(ctx context.Context, c config.Server, logger *slog.Logger) error {
	store, err := openStore(ctx, c.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	lis, err := net.Listen("tcp", c.GRPCAddress)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	gs := grpc.NewServer()
	scoreboard.Register(gs, scoreboard.NewServer(store, logger))

	hs := &http.Server{
		Addr:              c.HTTPAddress,
		Handler:           scoreboard.NewHTTPHandler(store, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting grpc server", slog.String("address", lis.Addr().String()))
		if err := gs.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("starting http server", slog.String("address", c.HTTPAddress))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		gs.GracefulStop()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, path string) (scoreboard.Store, error) {
	if path == "" {
		return scoreboard.NewMemoryStore(), nil
	}
	s, err := scoreboard.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return s, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
