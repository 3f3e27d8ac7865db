package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/qrscan/internal/logging"
	"github.com/coral-mesh/qrscan/internal/scan"
)

// Dispatcher performs the primary action of detections that pass its filter.
type Dispatcher struct {
	performer Performer
	filter    *Filter
	logger    zerolog.Logger
}

// NewDispatcher creates a dispatcher. A nil filter dispatches everything.
func NewDispatcher(performer Performer, filter *Filter, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		performer: performer,
		filter:    filter,
		logger:    logger.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch runs the primary action for record. It reports whether the record
// passed the filter.
func (d *Dispatcher) Dispatch(ctx context.Context, record scan.DecodedRecord) (bool, error) {
	if d.filter != nil {
		ok, err := d.filter.Match(record)
		if err != nil {
			return false, err
		}
		if !ok {
			d.logger.Debug().Str("type", record.Type.String()).Msg("Detection filtered out")
			return false, nil
		}
	}

	action := Primary(record)
	logging.Payload(d.logger.Info(), d.logger, record.Text).
		Str("action", string(action.Kind)).
		Msg("Dispatching action")

	if err := d.performer.Perform(ctx, action); err != nil {
		return true, fmt.Errorf("perform %s: %w", action.Kind, err)
	}
	return true, nil
}
