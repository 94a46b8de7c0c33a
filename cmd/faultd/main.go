package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielpatrickdp/falselabel/internal/faultrpc"
	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

// #region main
func main() {
	addr := flag.String("addr", envOr("FAULTD_ADDR", ":50061"), "gRPC listen address")
	workers := flag.Int("workers", envInt("FAULTD_WORKERS", 0), "parallel accelerator workers (0 = NumCPU)")
	maxMsg := flag.Int("max-msg", envInt("FAULTD_MAX_MSG", 64<<20), "max gRPC message size in bytes")
	metricsAddr := flag.String("metrics-addr", envOr("FAULTD_METRICS_ADDR", ""), "prometheus listen address (empty to disable)")
	flag.Parse()

	collectors := telemetry.NewCollectors(prometheus.DefaultRegisterer)
	srv := faultrpc.NewGRPCServer(
		faultrpc.NewServer(faults.NewLocal(*workers)),
		*maxMsg,
		grpc.UnaryInterceptor(faultrpc.UnaryInterceptor(collectors)),
	)

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		metricsSrv = newMetricsServer(*metricsAddr, prometheus.DefaultGatherer)
		go func() {
			log.Printf("[faultd] metrics on %s/metrics", *metricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[faultd] metrics server error: %v", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", *addr, err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Printf("[faultd] shutting down")
		shutdown(srv, metricsSrv, 5*time.Second)
	}()

	log.Printf("[faultd] fault counter listening on %s", *addr)
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region helpers
func newMetricsServer(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux}
}

// shutdown drains the metrics listener, then stops the gRPC server.
func shutdown(srv *grpc.Server, metricsSrv *http.Server, grace time.Duration) {
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Printf("[faultd] metrics shutdown: %v", err)
		}
	}
	srv.GracefulStop()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// #endregion helpers
