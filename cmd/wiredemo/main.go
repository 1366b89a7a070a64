// Command wiredemo drives the wire and board renderers headless on a noop
// GPU device, simulating a user laying out wires with the cursor.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/wireboard"
)

func main() {
	var cfg config
	flag.IntVar(&cfg.frames, "frames", 240, "number of frames to render")
	flag.IntVar(&cfg.wires, "wires", 64, "number of wires laid out before the first frame")
	flag.IntVar(&cfg.board, "board", 32, "board width and height in tiles")
	flag.IntVar(&cfg.gestureFrames, "gesture-frames", 30, "frames per simulated placement gesture")
	flag.BoolVar(&cfg.dirtyTracking, "dirty-tracking", false, "upload only changed instance records")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	wireboard.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *metricsAddr, logger); err != nil {
		logger.Error("wiredemo failed", "err", err)
		os.Exit(1)
	}
}

// run renders the frames and, when addr is set, serves metrics until the
// context is cancelled.
func run(ctx context.Context, cfg config, addr string, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("serving metrics", "addr", addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		d, err := newDemo(cfg)
		if err != nil {
			return err
		}
		defer d.close()
		if err := d.run(gctx, logger); err != nil {
			return err
		}
		if addr != "" {
			logger.Info("frames done, serving metrics until interrupted")
		}
		return nil
	})

	return g.Wait()
}
