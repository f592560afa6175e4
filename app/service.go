package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/kilianp07/cevcharge/api/runs"
	"github.com/kilianp07/cevcharge/config"
	"github.com/kilianp07/cevcharge/core/charging"
	coremetrics "github.com/kilianp07/cevcharge/core/metrics"
	coremon "github.com/kilianp07/cevcharge/core/monitoring"
	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
	"github.com/kilianp07/cevcharge/core/runstore"
	"github.com/kilianp07/cevcharge/infra/dataset"
	"github.com/kilianp07/cevcharge/infra/logger"
	"github.com/kilianp07/cevcharge/infra/metrics"
	inframqtt "github.com/kilianp07/cevcharge/infra/mqtt"
	infrastore "github.com/kilianp07/cevcharge/infra/runstore"
	"github.com/kilianp07/cevcharge/pkg/export"
)

// Service wires the dataset, the allocator and the run outputs together.
type Service struct {
	cfg       *config.Config
	store     runstore.Store
	sink      coremetrics.Sink
	publisher coremqtt.Publisher
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// Option customises a Service.
type Option func(*Service)

// WithStore replaces the store opened from the configuration.
func WithStore(s runstore.Store) Option { return func(svc *Service) { svc.store = s } }

// WithSink replaces the metrics sinks built from the configuration.
func WithSink(s coremetrics.Sink) Option { return func(svc *Service) { svc.sink = s } }

// WithPublisher sets the publisher used by Publish.
func WithPublisher(p coremqtt.Publisher) Option { return func(svc *Service) { svc.publisher = p } }

// WithClock overrides the time source and the run id generator.
func WithClock(now func() time.Time, newID func() string) Option {
	return func(svc *Service) {
		svc.now = now
		svc.newID = newID
	}
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{
		cfg:   cfg,
		log:   logger.New("service"),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(svc)
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.store == nil {
		store, err := infrastore.Open(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
		svc.store = store
	}
	return svc, nil
}

// Outcome is a completed simulation.
type Outcome struct {
	RunID    string
	Scenario string
	Result   *charging.Result
	Profile  charging.PowerProfile
	// Files lists the outputs written to disk.
	Files []string
}

// Simulate loads the configured dataset and runs it.
func (s *Service) Simulate(ctx context.Context) (*Outcome, error) {
	sc, err := dataset.LoadDir(s.cfg.Dataset)
	if err != nil {
		coremon.CaptureException(err, coremon.RunTags("", s.cfg.Dataset.Name))
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return s.Run(ctx, sc)
}

// Run allocates charging for a loaded scenario, writes the configured
// outputs, records metrics and stores the run.
func (s *Service) Run(ctx context.Context, sc *dataset.Scenario) (*Outcome, error) {
	plug, err := s.cfg.Charging.ResolvePlugPower(sc.Parameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", charging.ErrConfiguration, err)
	}
	opts := []charging.Option{charging.WithLogger(logger.New("allocator"))}
	if s.cfg.Charging.RequireRecords {
		opts = append(opts, charging.RequireRecords())
	}
	alloc := charging.NewAllocator(s.cfg.Charging.Parameters(plug), opts...)

	runID := s.newID()
	tags := coremon.RunTags(runID, sc.Name)
	res, err := alloc.Allocate(sc.Work, sc.Rates)
	if err != nil {
		coremon.CaptureException(err, tags)
		return nil, err
	}
	out := &Outcome{
		RunID:    runID,
		Scenario: sc.Name,
		Result:   res,
		Profile:  charging.Profile(res.Ledger, res.Params.Horizon),
	}
	if out.Files, err = s.writeOutputs(out); err != nil {
		coremon.CaptureException(err, tags)
		return nil, fmt.Errorf("write outputs: %w", err)
	}

	at := s.now()
	if err := s.sink.RecordRun(coremetrics.RunEvent{
		RunID:    runID,
		Scenario: sc.Name,
		Time:     at,
		Result:   res,
		Profile:  out.Profile,
	}); err != nil {
		s.log.Errorf("record run metrics: %v", err)
	}
	if err := s.store.Append(ctx, runstore.NewRun(runID, sc.Name, at, res, out.Profile)); err != nil {
		coremon.CaptureException(err, tags)
		return nil, fmt.Errorf("store run: %w", err)
	}
	s.log.Infow("run completed", map[string]any{
		"run_id":           runID,
		"scenario":         sc.Name,
		"energy_kwh":       res.Totals.EnergyKWh,
		"electricity_cost": res.Totals.ElectricityCost,
		"co2_cost":         res.Totals.CO2Cost,
		"unmet_kwh":        res.Totals.UnmetKWh,
		"peak_kw":          out.Profile.PeakKW,
	})
	return out, nil
}

func (s *Service) writeOutputs(out *Outcome) ([]string, error) {
	oc := s.cfg.Output
	writers := []struct {
		name  string
		write func(f *os.File) error
	}{
		{oc.LedgerCSV, func(f *os.File) error { return export.WriteLedgerCSV(f, out.Result.Ledger) }},
		{oc.LedgerJSON, func(f *os.File) error { return export.WriteLedgerJSON(f, out.RunID, out.Scenario, out.Result) }},
		{oc.ProfileCSV, func(f *os.File) error { return export.WriteProfileCSV(f, out.Profile) }},
	}
	var files []string
	for _, w := range writers {
		if w.name == "" {
			continue
		}
		if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
			return files, err
		}
		path := filepath.Join(oc.Dir, w.name)
		f, err := os.Create(path)
		if err != nil {
			return files, err
		}
		werr := w.write(f)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return files, fmt.Errorf("%s: %w", path, werr)
		}
		files = append(files, path)
	}
	return files, nil
}

// PublishReport is the outcome of sending one vehicle schedule.
type PublishReport struct {
	Schedule  charging.VehicleSchedule
	CommandID string
	Err       error
}

// Publish sends one schedule per charged vehicle. Every schedule is
// attempted; the returned error joins the individual failures.
func (s *Service) Publish(ctx context.Context, out *Outcome) ([]PublishReport, error) {
	if s.publisher == nil {
		return nil, coremqtt.ErrNotConnected
	}
	rec, _ := s.sink.(coremetrics.PublishRecorder)
	var (
		reports []PublishReport
		errs    []error
	)
	for _, sched := range charging.Schedules(out.Result.Ledger) {
		start := s.now()
		id, err := s.publisher.PublishSchedule(ctx, coremqtt.ScheduleOrder{RunID: out.RunID, Schedule: sched})
		reports = append(reports, PublishReport{Schedule: sched, CommandID: id, Err: err})
		ev := coremetrics.PublishEvent{
			RunID:     out.RunID,
			CommandID: id,
			Location:  sched.Location,
			Vehicle:   sched.Vehicle,
			Latency:   s.now().Sub(start),
			Time:      start,
		}
		if err != nil {
			ev.Err = err.Error()
			errs = append(errs, err)
		}
		if rec != nil {
			if rerr := rec.RecordPublish(ev); rerr != nil {
				s.log.Errorf("record publish: %v", rerr)
			}
		}
	}
	return reports, errors.Join(errs...)
}

// Runs lists stored runs.
func (s *Service) Runs(ctx context.Context, q runstore.Query) ([]runstore.Run, error) {
	return s.store.Query(ctx, q)
}

// Handler returns the HTTP API of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/runs", runs.NewHandler(s.store, s.cfg.API.Token))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if len(s.cfg.API.CORSOrigins) == 0 {
		return mux
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.API.CORSOrigins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Authorization"},
	}).Handler(mux)
}

// Serve exposes the HTTP API, and the Prometheus endpoint when a prometheus
// sink is configured, until ctx is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	if s.promEnabled() {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	return metrics.Serve(ctx, s.cfg.API.Addr, s.Handler())
}

func (s *Service) promEnabled() bool {
	for _, m := range s.cfg.Metrics.Sinks {
		if m.Type == "prometheus" {
			return true
		}
	}
	return false
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if d, ok := s.publisher.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
	return s.store.Close()
}

// NewPublisher connects the MQTT publisher described by the configuration.
func NewPublisher(cfg *config.Config) (*inframqtt.PahoPublisher, error) {
	if !cfg.MQTT.Enabled() {
		return nil, errors.New("mqtt broker not configured")
	}
	return inframqtt.NewPahoPublisher(cfg.MQTT)
}
