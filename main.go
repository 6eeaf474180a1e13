package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-biobase-guidance-driver/biobdriver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "guidanced",
	Short:         "Operator guidance driver for BioBase fingerprint scanners",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the guidance driver against a device gateway",
	RunE:  runDriver,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the driver version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

var (
	configPath  string
	openOnStart bool
)

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	runCmd.Flags().BoolVar(&openOnStart, "open", false, "open the device once the driver is up")
	rootCmd.AddCommand(runCmd, renderCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		biobdriver.Logger.Error("guidanced failed", zap.Error(err))
		os.Exit(1)
	}
}

func runDriver(cmd *cobra.Command, args []string) error {
	defer biobdriver.Logger.Sync()

	cfg, err := biobdriver.LoadConfig(configPath)
	if err != nil {
		return err
	}

	gw, err := biobdriver.NewGateway(cfg.Bridge)
	if err != nil {
		return fmt.Errorf("connect gateway: %w", err)
	}

	hub := biobdriver.NewHub()
	pubs := []biobdriver.Publisher{hub}
	if bridge, ok := gw.(*biobdriver.MQTTBridge); ok {
		pubs = append(pubs, bridge)
	}
	d := biobdriver.NewDevice(*cfg, gw, pubs...)

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           biobdriver.NewRouter(d, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gw.Run(ctx) })
	g.Go(func() error { return d.Run(ctx) })
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error {
		biobdriver.Logger.Info("operator API listening", zap.String("addr", cfg.API.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Templates.Watch {
		tw, err := biobdriver.NewTemplateWatcher(cfg.Templates.Dir, func() {
			d.Post(biobdriver.Event{Kind: biobdriver.EventTemplatesChanged})
		})
		if err != nil {
			biobdriver.Logger.Warn("template watcher disabled", zap.Error(err))
		} else {
			g.Go(func() error { return tw.Run(ctx) })
		}
	}

	if openOnStart {
		g.Go(func() error {
			if err := d.Submit(ctx, biobdriver.Event{Kind: biobdriver.EventCmdOpen}); err != nil {
				biobdriver.Logger.Error("open on start", zap.Error(err))
			}
			return nil
		})
	}

	err = g.Wait()
	biobdriver.Logger.Info("guidanced stopped")
	return err
}

