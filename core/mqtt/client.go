package mqtt

import (
	"context"

	"github.com/kilianp07/cevcharge/core/charging"
)

// ScheduleOrder is the charging session sent to a mobile charging station
// serving a vehicle.
type ScheduleOrder struct {
	RunID    string
	Schedule charging.VehicleSchedule
}

// Publisher sends charging schedules to the field.
type Publisher interface {
	// PublishSchedule sends the order and returns the command identifier
	// attached to it.
	PublishSchedule(ctx context.Context, order ScheduleOrder) (commandID string, err error)
}
