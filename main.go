package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/manojvamsi/portfolio/internal/config"
	"github.com/manojvamsi/portfolio/internal/contact"
	"github.com/manojvamsi/portfolio/internal/logger"
	"github.com/manojvamsi/portfolio/internal/relay"
	"github.com/manojvamsi/portfolio/internal/sessions"
	"github.com/manojvamsi/portfolio/internal/store"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions holds global flags for all commands.
type rootOptions struct {
	envFile string
	format  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Personal portfolio site with a relayed contact form",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format for reports (json|text)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the portfolio site",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Print visitor and contact form statistics",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStats(cmd.Context(), opts, cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "cleanup",
			Short: "Delete visitor records past the retention window",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCleanup(cmd.Context(), opts, cmd.OutOrStdout())
			},
		},
	)
	return cmd
}

func setup(opts *rootOptions) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, errors.New("DB_PATH is empty: visitor tracking is disabled")
	}
	return store.Open(cfg.Store.Path)
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, log, err := setup(opts)
	if err != nil {
		return err
	}
	if cfg.App.GinMode != "" {
		gin.SetMode(cfg.App.GinMode)
	} else if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	rel, creds, err := relay.New(cfg.Relay, log)
	if err != nil {
		return err
	}

	var tracker *visitorTracker
	if cfg.Store.Path != "" {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if tracker, err = newVisitorTracker(st, log); err != nil {
			return err
		}
		defer tracker.Wait()
		go func() {
			if _, err := cleanupOldVisitors(context.Background(), st, time.Now(), log); err != nil {
				log.Error().Err(err).Msg("error cleaning up old visitor data")
			}
		}()
		log.Info().Msg("privacy: visitor tracking enabled with hashed IP addresses")
	}

	flowOpts := []contact.Option{contact.WithLogger(log)}
	if tracker != nil {
		flowOpts = append(flowOpts, contact.WithAttemptHook(tracker.RecordAttempt))
	}
	registry := sessions.New(cfg.Sessions.Capacity, cfg.Sessions.TTL, func() *contact.Flow {
		return contact.New(rel, creds, flowOpts...)
	})

	router, err := newRouter(&server{
		log:       log,
		portfolio: portfolio,
		sessions:  registry,
		visitors:  tracker,
		now:       time.Now,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("relay", cfg.Relay.Provider).Msg("portfolio listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runStats(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, _, err := setup(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(ctx, time.Now())
	if err != nil {
		return err
	}
	return writeStats(out, opts.format, stats)
}

func writeStats(out io.Writer, format string, stats *store.Stats) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	case "text":
		fmt.Fprintf(out, "Total visitors:      %d\n", stats.TotalVisitors)
		fmt.Fprintf(out, "Unique visitors:     %d\n", stats.UniqueVisitors)
		fmt.Fprintf(out, "Visitors today:      %d\n", stats.VisitorsToday)
		fmt.Fprintf(out, "Visitors this week:  %d\n", stats.VisitorsThisWeek)
		for _, status := range []string{contact.StatusSuccess.String(), contact.StatusError.String()} {
			fmt.Fprintf(out, "Contact %-8s %d\n", status+":", stats.ContactAttempts[status])
		}
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be json or text", format)
	}
}

func runCleanup(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, log, err := setup(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	removed, err := cleanupOldVisitors(ctx, st, time.Now(), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d visitor records older than %d months\n", removed, visitorRetentionMonths)
	return nil
}
