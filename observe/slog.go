package observe

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atlekbai/hsm"
)

// SlogTracer logs fired triggers at debug level and executed transitions at
// info level. Every record carries the machine_id of the tracer so that the
// output of several machines sharing one logger can be told apart.
type SlogTracer[TState, TTrigger comparable] struct {
	logger    *slog.Logger
	machineID string
}

// NewSlogTracer creates a tracer writing to logger, or to slog.Default() when
// logger is nil.
func NewSlogTracer[TState, TTrigger comparable](logger *slog.Logger) *SlogTracer[TState, TTrigger] {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTracer[TState, TTrigger]{
		logger:    logger,
		machineID: uuid.NewString(),
	}
}

// MachineID returns the identifier attached to every record.
func (t *SlogTracer[TState, TTrigger]) MachineID() string {
	return t.machineID
}

func (t *SlogTracer[TState, TTrigger]) Trigger(trigger TTrigger) {
	t.logger.Debug("Trigger fired",
		"machine_id", t.machineID,
		"trigger", fmt.Sprint(trigger),
	)
}

func (t *SlogTracer[TState, TTrigger]) Transition(transition hsm.Transition[TState, TTrigger]) {
	fields := []any{
		"machine_id", t.machineID,
		"to", fmt.Sprint(transition.Destination),
	}
	if transition.IsInitial() {
		fields = append(fields, "initial", true)
	} else {
		fields = append(fields,
			"trigger", fmt.Sprint(transition.Trigger),
			"from", fmt.Sprint(transition.Source),
			"reentry", transition.IsReentry(),
		)
	}
	t.logger.Info("Transition executed", fields...)
}

func (t *SlogTracer[TState, TTrigger]) Completed(trigger TTrigger, err error) {
	if err == nil {
		return
	}
	t.logger.Warn("Trigger failed",
		"machine_id", t.machineID,
		"trigger", fmt.Sprint(trigger),
		"error", err,
	)
}
