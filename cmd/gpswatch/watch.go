package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dukat-Gul/gpswatch"
	"github.com/Dukat-Gul/gpswatch/config"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// watchCmd runs the demonstration loop against a live gpsd.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll gpsd and print cached GPS state",
	Long: `Poll gpsd in the background and periodically print the cached TPV and
SKY sentences, the derived position, and the drift-corrected time.

The command runs until interrupted (Ctrl+C) or receives SIGTERM. It
reports the time to first fix once a TPV sentence with a 2D/3D lock has
been cached.

Example:
  gpswatch watch
  gpswatch watch -c config.yaml --every 10s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
	watchCmd.Flags().Duration("every", 5*time.Second, "how often to print cached state")
}

func runWatch(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	every, _ := cmd.Flags().GetDuration("every")

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		// defaults only
		cfg, err = config.Parse(nil)
		if err != nil {
			return fmt.Errorf("failed to build default config: %w", err)
		}
	}

	logger := newLogger(cfg.Level())

	opts, err := config.BuildOptions(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}

	rcv, err := gpswatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create receiver: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer rcv.Stop()

	logger.Info("watching", "address", rcv.Address(), "print_every", every.String())

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Foreground {
		// foreground mode: Start blocks, so it gets its own group member
		g.Go(func() error {
			rcv.Start(ctx)
			return nil
		})
	} else {
		rcv.Start(ctx)
	}
	g.Go(func() error {
		return printLoop(ctx, rcv, every)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// printLoop prints cached state every interval until the context ends.
func printLoop(ctx context.Context, rcv *gpswatch.Receiver, every time.Duration) error {
	start := time.Now()
	noFix := true

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		tpv, haveTPV := rcv.Sentence("TPV")
		if !haveTPV {
			fmt.Println("no TPV sentence cached yet")
			continue
		}

		if noFix {
			if _, err := rcv.CorrectedNow(); err == nil {
				fmt.Printf("got fix after %s\n", time.Since(start).Round(time.Millisecond))
				noFix = false
			}
		}

		pos := rcv.Position()
		fmt.Printf("position: lat %.6f lon %.6f alt %.1fm hdop %.1f\n",
			pos.Lat, pos.Lon, pos.Alt, pos.HDOP)
		fmt.Printf("TPV: %v\n", tpv.Fields)
		if sky, ok := rcv.Sentence("SKY"); ok {
			fmt.Printf("SKY: %v\n", sky.Fields)
		}
		if corrected, err := rcv.CorrectedNow(); err == nil {
			fmt.Printf("corrected time: %s\n", corrected.Format(time.RFC3339))
		}
		fmt.Printf("cached classes: %v\n", rcv.SentenceClasses())
	}
}
