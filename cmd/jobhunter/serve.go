package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/chat"
	"github.com/amishk599/jobhunter/internal/ratelimit"
	"github.com/amishk599/jobhunter/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat over HTTP",
	Long:  "Starts the HTTP chat API (POST /api/chat, GET /health); blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: chat.listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := a.repository(ctx)
	if err != nil {
		a.logger.Error("failed to open store", "error", err)
		return err
	}
	defer closeRepo()

	// Every session shares one crew so searches from all clients are spaced out.
	hunter := a.crew(a.searcher(ratelimit.NewBackendLimiter(a.cfg.Watch.MinDelay)), repo)
	factory := func() *chat.Session { return a.session(hunter) }

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Chat.ListenAddr
	}
	srv := server.New(factory, server.Options{
		RateLimit:     a.cfg.Chat.RateLimit,
		RateBurst:     a.cfg.Chat.RateBurst,
		MaxConcurrent: int64(a.cfg.Chat.MaxSearches),
	}, a.logger)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		a.logger.Error("server error", "error", err)
		return err
	}
	a.logger.Info("goodbye")
	return nil
}
