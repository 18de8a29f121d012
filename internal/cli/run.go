package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"parodybot/internal/api"
	"parodybot/internal/config"
	"parodybot/internal/worker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch all accounts forever, publishing a parody for each new post",
	RunE:  runAction,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	board := worker.NewBoard(cfg.Accounts)

	var server *api.Server
	var sinks []worker.Sink
	if cfg.Server.Addr != "" {
		server = api.NewServer(board, 0, log)
		sinks = append(sinks, server)
	}

	a, err := buildApp(ctx, cfg, log, appOptions{board: board, sinks: sinks})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	g, ctx := errgroup.WithContext(ctx)

	if server != nil {
		g.Go(func() error {
			return server.Start(cfg.Server.Addr)
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return a.driver.Run(ctx)
	})

	log.Infof("[APP] started with %d accounts (scraper=%s, generator=%s, publisher=%s, store=%s)",
		len(cfg.Accounts), cfg.Scraper.Backend, cfg.Generator.Backend, cfg.Publisher.Backend, cfg.Store.Driver)

	err = g.Wait()
	log.Infof("[APP] shutting down")
	return err
}
