package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cevcharge/app"
	"github.com/kilianp07/cevcharge/config"
	coremon "github.com/kilianp07/cevcharge/core/monitoring"
	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
	inframqtt "github.com/kilianp07/cevcharge/infra/mqtt"
)

var dryRun bool

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Simulate the scenario and send each vehicle's schedule over MQTT",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the schedules instead of publishing them")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := publishService(cfg, dryRun)
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
	reports, err := svc.Publish(ctx, out)
	w := cmd.OutOrStdout()
	for _, r := range reports {
		s := r.Schedule
		status := r.CommandID
		if r.Err != nil {
			status = "error: " + r.Err.Error()
		}
		_, _ = fmt.Fprintf(w, "%s/%s slots %d-%d %.3f kWh -> %s\n",
			s.Location, s.Vehicle, s.StartSlot, s.EndSlot, s.EnergyKWh, status)
	}
	return err
}

type schedulePublisher interface {
	coremqtt.Publisher
	Disconnect()
}

var newPublisher = func(cfg *config.Config) (schedulePublisher, error) {
	p, err := app.NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// publishService builds the service with the MQTT publisher, or the mock one
// when dry is set. The publisher is disconnected if the service cannot be
// built.
func publishService(cfg *config.Config, dry bool) (*app.Service, error) {
	if dry {
		return setup(cfg, app.WithPublisher(inframqtt.NewMockPublisher()))
	}
	p, err := newPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}
	svc, err := setup(cfg, app.WithPublisher(p))
	if err != nil {
		p.Disconnect()
		return nil, err
	}
	return svc, nil
}
