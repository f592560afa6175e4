package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cevcharge/app"
	"github.com/kilianp07/cevcharge/config"
	coremon "github.com/kilianp07/cevcharge/core/monitoring"
	"github.com/kilianp07/cevcharge/infra/logger"
	inframon "github.com/kilianp07/cevcharge/infra/monitoring"
)

var (
	cfgPath    string
	datasetDir string
	outDir     string
	plugPower  float64
)

var rootCmd = &cobra.Command{
	Use:          "cevcharge",
	Short:        "Schedule construction EV charging right after each work shift",
	SilenceUsage: true,
	RunE:         runSimulate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVarP(&datasetDir, "dataset", "d", "", "scenario directory (overrides dataset.dir)")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "output directory (overrides output.dir)")
	rootCmd.PersistentFlags().Float64Var(&plugPower, "plug-power", 0, "plug power in kW (overrides charging.plug_power_kw)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration and applies the command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if datasetDir != "" {
		cfg.Dataset.Dir = datasetDir
		cfg.Dataset.Name = ""
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if plugPower > 0 {
		cfg.Charging.PlugPowerKW = plugPower
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup installs the error monitor and builds the service.
func setup(cfg *config.Config, opts ...app.Option) (*app.Service, error) {
	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	return app.New(cfg, opts...)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
	coremon.Flush(2 * time.Second)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := setup(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)
	defer coremon.Recover()

	out, err := svc.Simulate(ctx)
	if err != nil {
		return err
	}
	printOutcome(cmd.OutOrStdout(), out)
	return nil
}

func printOutcome(w io.Writer, out *app.Outcome) {
	t := out.Result.Totals
	_, _ = fmt.Fprintf(w, "run %s (%s)\n", out.RunID, out.Scenario)
	_, _ = fmt.Fprintf(w, "  vehicles:          %d\n", len(out.Result.Summaries))
	_, _ = fmt.Fprintf(w, "  ledger entries:    %d\n", len(out.Result.Ledger))
	_, _ = fmt.Fprintf(w, "  energy:            %.3f kWh\n", t.EnergyKWh)
	_, _ = fmt.Fprintf(w, "  electricity cost:  %.3f\n", t.ElectricityCost)
	_, _ = fmt.Fprintf(w, "  co2 cost:          %.3f\n", t.CO2Cost)
	_, _ = fmt.Fprintf(w, "  total cost:        %.3f\n", t.TotalCost())
	_, _ = fmt.Fprintf(w, "  peak power:        %.1f kW\n", out.Profile.PeakKW)
	if t.UnmetKWh > 0 {
		_, _ = fmt.Fprintf(w, "  unmet energy:      %.3f kWh (%d vehicles)\n", t.UnmetKWh, len(out.Result.Shortfalls))
	}
	for _, f := range out.Files {
		_, _ = fmt.Fprintf(w, "  wrote %s\n", f)
	}
}
