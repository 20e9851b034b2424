package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/application/services"
	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/infrastructure/sink"
	"github.com/carlosrabelo/switchkit/core/infrastructure/transport"
)

const (
	metricsPath   = "/metrics"
	probePath     = "/probe"
	inventoryPath = "/inventory"
)

// reportCache serves the last published report of a switch.
type reportCache interface {
	Latest(ctx context.Context, target string) (entities.InventoryReport, error)
}

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose port-channel inventory over HTTP",
		Long: `Serve Prometheus metrics and per-switch probes.

  /metrics              process metrics
  /probe?target=<t>     collect one switch and return its request metrics
  /inventory?target=<t> the port-channel report of one switch as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Serve.Listen
			}
			var cache reportCache
			if redisCfg := a.cfg.Publish.Redis; redisCfg.Addr != "" {
				rp := sink.NewRedisPublisher(redisCfg.Addr, redisCfg.Password, redisCfg.DB, redisCfg.KeyPrefix, redisCfg.TTL, a.log)
				defer rp.Close()
				cache = rp
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{Addr: listen, Handler: a.mux(cache)}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			a.log.Info("starting http server",
				zap.String("metrics_path", metricsPath),
				zap.String("probe_path", probePath),
				zap.String("listen", listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from serve.listen)")
	return cmd
}

func (a *app) mux(cache reportCache) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.Handler())
	mux.HandleFunc(probePath, a.handleProbe)
	mux.HandleFunc(inventoryPath, func(w http.ResponseWriter, r *http.Request) {
		a.handleInventory(w, r, cache)
	})
	return mux
}

// lookupTarget resolves ?target= and answers 400 when it is missing or unknown.
func (a *app) lookupTarget(w http.ResponseWriter, r *http.Request) (entities.SwitchConfig, *zap.Logger, bool) {
	target := r.URL.Query().Get("target")
	if target == "" {
		a.log.Error("request with missing target")
		http.Error(w, "?target= missing", http.StatusBadRequest)
		return entities.SwitchConfig{}, nil, false
	}
	log := a.log.With(zap.String("target", target))
	sw, err := a.cfg.Switch(target)
	if err != nil {
		log.Error("unknown target")
		http.Error(w, "unknown target", http.StatusBadRequest)
		return entities.SwitchConfig{}, nil, false
	}
	return sw, log, true
}

func (a *app) handleProbe(w http.ResponseWriter, r *http.Request) {
	sw, log, ok := a.lookupTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout(r))
	defer cancel()
	r = r.WithContext(ctx)

	start := time.Now()
	registry := prometheus.NewRegistry()
	metrics := transport.NewCallbackMetrics(prometheus.WrapRegistererWithPrefix("switchkit_", registry))

	report, err := a.service(services.WithMetrics(metrics)).Collect(ctx, sw)
	var success float64 = 1
	if err != nil {
		log.Error("error probing switch", zap.Error(err))
		success = 0
	}

	portChannelsGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "switchkit_port_channels",
		Help: "Number of port-channels found on the switch",
	})
	registry.MustRegister(portChannelsGauge)
	portChannelsGauge.Set(float64(len(report.PortChannels)))

	probeDurationGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "probe_duration_seconds",
		Help: "Returns how long the probe took to complete in seconds",
	})
	registry.MustRegister(probeDurationGauge)
	probeDurationGauge.Set(time.Since(start).Seconds())

	probeSuccessGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "probe_success",
		Help: "Displays whether or not the probe was a success",
	})
	registry.MustRegister(probeSuccessGauge)
	probeSuccessGauge.Set(success)

	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	h.ServeHTTP(w, r)
}

func (a *app) handleInventory(w http.ResponseWriter, r *http.Request, cache reportCache) {
	sw, log, ok := a.lookupTarget(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout(r))
	defer cancel()

	report, err := a.inventory(ctx, sw, cache)
	if err != nil {
		log.Error("error collecting inventory", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := sink.NewJSONWriter(w).Publish(ctx, report); err != nil {
		log.Error("error writing inventory", zap.Error(err))
	}
}

// inventory prefers the cached report and collects live on a miss.
func (a *app) inventory(ctx context.Context, sw entities.SwitchConfig, cache reportCache) (entities.InventoryReport, error) {
	if cache != nil {
		report, err := cache.Latest(ctx, sw.Target)
		if err == nil {
			return report, nil
		}
		if !errors.Is(err, entities.ErrNotFound) {
			a.log.Warn("report cache unavailable", zap.String("target", sw.Target), zap.Error(err))
		}
	}
	return a.service().Collect(ctx, sw)
}

// timeout honours the scrape timeout announced by Prometheus.
func (a *app) timeout(r *http.Request) time.Duration {
	if value := r.Header.Get("X-Prometheus-Scrape-Timeout-Seconds"); value != "" {
		if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return a.cfg.Serve.Timeout
}
