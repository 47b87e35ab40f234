// Package dispatch implements the observation dispatcher: it walks a
// decoded poll reply for valid numeric observations and fans them out as
// JSON webhook POSTs to every subscription bound to the originating
// monitor's MAC address.
package dispatch

import (
	"log/slog"
	"time"

	"github.com/vpbank/intellivue-gateway/intellivue/nomenclature"
	"github.com/vpbank/intellivue-gateway/intellivue/wire"
	"github.com/vpbank/intellivue-gateway/models"
)

// PollReply is one decoded poll reply awaiting dispatch, produced by the
// session engine and consumed here — the same producer-defines-consumer-owns
// shape as the teacher's poller.PollJob/scheduler pairing.
type PollReply struct {
	MonitorMAC string
	Reply      wire.PollInfoList
}

// Dispatcher is the single stage between the session engine and the bounded
// webhook worker pool. It never blocks on HTTP I/O itself: a slow subscriber
// endpoint stalls only the worker pool, never decode or dispatch.
type Dispatcher struct {
	registry *nomenclature.Registry
	subs     *SubscriptionTable
	pool     *WorkerPool
	logger   *slog.Logger
}

// New builds a Dispatcher. pool must already be started by the caller.
func New(registry *nomenclature.Registry, subs *SubscriptionTable, pool *WorkerPool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &Dispatcher{registry: registry, subs: subs, pool: pool, logger: logger}
}

// Run consumes replies from in until it is closed, building and enqueueing
// one webhook job per reply that contains at least one valid observation.
func (d *Dispatcher) Run(in <-chan PollReply) {
	for reply := range in {
		d.handle(reply)
	}
}

func (d *Dispatcher) handle(reply PollReply) {
	var observations []models.Observation

	reply.Reply.WalkObservations(func(v wire.NuObsValue) {
		if !v.MeasurementIsValid() {
			return
		}
		observations = append(observations, d.toObservation(v))
	})

	if len(observations) == 0 {
		return
	}

	payload := models.WebhookPayload{
		MonitorID:    reply.MonitorMAC,
		Datetime:     time.Now(),
		Observations: observations,
	}

	for _, sub := range d.subs.ForMonitor(reply.MonitorMAC) {
		job := webhookJob{url: sub.URL, payload: payload}
		if !d.pool.TrySubmit(job) {
			d.logger.Warn("dispatch: webhook queue full, dropping job",
				"monitor", reply.MonitorMAC, "subscription", sub.ID)
		}
	}
}

func (d *Dispatcher) toObservation(v wire.NuObsValue) models.Observation {
	physioID := symbolOrNumeric(d.registry, nomenclature.PartDimension, v.PhysioID)
	unitCode := symbolOrNumeric(d.registry, nomenclature.PartDimension, v.UnitCode)
	return models.Observation{
		PhysioID: physioID,
		UnitCode: unitCode,
		Value:    decodeFloatOrZero(v.ValueRaw),
		State:    nomenclature.StateFlagNames(v.State),
	}
}

// symbolOrNumeric resolves a code to its symbolic name when the registry
// knows it in the given partition, falling back to the numeric value as a
// string — an unknown attribute identifier is not an error.
func symbolOrNumeric(registry *nomenclature.Registry, part nomenclature.Partition, code uint16) string {
	if registry != nil {
		if name, ok := registry.Name(part, code); ok {
			return name
		}
	}
	return itoa(code)
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
