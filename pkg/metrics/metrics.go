/*
Copyright 2022 Cortex Labs, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/cron"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/json"
	"github.com/cortexlabs/trainer/pkg/lib/telemetry"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/mem"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	_shutdownTimeout = 5 * time.Second
	_lossKey         = "loss"
)

type Reporter struct {
	registry     *prometheus.Registry
	handler      http.Handler
	loss         prometheus.Gauge
	metrics      *prometheus.GaugeVec
	lrMultiplier prometheus.Gauge
	steps        prometheus.Counter
	stepDuration prometheus.Histogram
	memoryUsed   prometheus.Gauge
	epoch        *atomic.Int64
	step         *atomic.Int64
	logger       *zap.SugaredLogger
}

type Status struct {
	// Epoch is the last finished epoch, counted from 0; -1 until the first one ends
	Epoch int64 `json:"epoch"`
	Step  int64 `json:"step"`
}

func NewReporter(logger *zap.SugaredLogger) *Reporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Reporter{
		registry: reg,
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		loss: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: consts.MetricsNamespace,
			Name:      "loss",
			Help:      "Training loss at the end of the last epoch",
		}),
		metrics: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: consts.MetricsNamespace,
			Name:      "metric",
			Help:      "Named training metrics at the end of the last epoch",
		}, []string{"name"}),
		lrMultiplier: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: consts.MetricsNamespace,
			Name:      "learning_rate_multiplier",
			Help:      "Learning rate schedule multiplier of the last optimizer step",
		}),
		steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: consts.MetricsNamespace,
			Name:      "steps_total",
			Help:      "Number of training steps run",
		}),
		stepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: consts.MetricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Histogram of training step durations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		memoryUsed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: consts.MetricsNamespace,
			Name:      "memory_used_bytes",
			Help:      "Host memory in use",
		}),
		epoch:  atomic.NewInt64(-1),
		step:   atomic.NewInt64(0),
		logger: logger,
	}
}

func (r *Reporter) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Reporter) ObserveStep(duration time.Duration, lrMultiplier float64) {
	r.step.Inc()
	r.steps.Inc()
	r.stepDuration.Observe(duration.Seconds())
	r.lrMultiplier.Set(lrMultiplier)
}

// ObserveEpoch records the logs of a finished epoch; epochs count from 0
func (r *Reporter) ObserveEpoch(epoch int, logs map[string]float64) {
	r.epoch.Store(int64(epoch))
	for name, value := range logs {
		if name == _lossKey {
			r.loss.Set(value)
			continue
		}
		r.metrics.With(prometheus.Labels{"name": name}).Set(value)
	}
}

func (r *Reporter) Status() Status {
	return Status{
		Epoch: r.epoch.Load(),
		Step:  r.step.Load(),
	}
}

func (r *Reporter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Reporter) Router() *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", r).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	router.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		statusBytes, err := json.Marshal(r.Status())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(statusBytes)
	}).Methods("GET")
	return router
}

// Serve blocks until ctx is done or the listener fails
func (r *Reporter) Serve(ctx context.Context, port int) error {
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "HEAD", "OPTIONS"}),
	}

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: handlers.RecoveryHandler()(handlers.CORS(corsOptions...)(r.Router())),
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Infof("serving metrics on port %d", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return ErrorServe(port, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.WithStack(err)
		}
		return nil
	}
}

// StartResourceMonitor samples host memory every interval; the returned func stops it
func (r *Reporter) StartResourceMonitor(interval time.Duration) func() {
	errorHandler := func(err error) {
		err = errors.Wrap(err, "failed to read memory usage")
		r.logger.Error(err)
		telemetry.Error(err)
	}

	memoryCron := cron.Run(r.sampleMemory, errorHandler, interval)

	return func() {
		memoryCron.Cancel()
	}
}

func (r *Reporter) sampleMemory() error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return err
	}
	r.memoryUsed.Set(float64(vm.Used))
	r.logger.Debugw("memory usage", "used_bytes", vm.Used, "used_percent", vm.UsedPercent)
	return nil
}
