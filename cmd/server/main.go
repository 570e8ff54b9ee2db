package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jrsteele09/go-oauth-session/internal/config"
	"github.com/jrsteele09/go-oauth-session/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "oauth-session",
	Short: "Demo web app behind the OAuth session middleware",
	Long: `Serves a small web app whose pages are protected by the OAuth
authorization-code session middleware.

Configuration comes from environment variables, optionally overlaid on a
YAML file given with --config. Set TEST_MODE=true to log in without a
real provider.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Err(err).Msg("Error running server")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}

func run(ctx context.Context) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	opts, err := newOptions(ctx, c)
	if err != nil {
		return err
	}
	server.LogRoutes(c.GetEnv())

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           newApp(c, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(srv)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv)
	})
	return g.Wait()
}

func setupLogging(c config.Config) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if c.GetLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if c.GetEnv() == server.EnvDev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
