// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package control runs the perception-decision-actuation cycle. One
// cycle classifies a camera frame, polls the sensor hub, and acts on
// the result with fixed precedence: bin full, then obstacle, then
// detection, then routine cruising. Motor failures park the craft in a
// fault pause and recovery is always attempted; the loop never exits on
// a hardware error, only on shutdown.
package control

import (
	"context"
	"log"
	"time"

	"github.com/aquabotics/amlac/internal/classifier"
	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/display"
	"github.com/aquabotics/amlac/internal/logbook"
	"github.com/aquabotics/amlac/internal/sensing"
	"github.com/aquabotics/amlac/internal/telemetry"
	"github.com/aquabotics/amlac/internal/vision"
)

// Actuators is the motor surface the loop drives. StopAll must always
// be safe to call, whatever state the hardware is in.
type Actuators interface {
	Forward(speed int) error
	TurnRight(speed int) error
	StopPropulsion() error
	StartCollector() error
	StopCollector() error
	StopAll()
}

// Sensors provides one non-blocking snapshot per cycle.
type Sensors interface {
	Poll() sensing.Snapshot
}

// Recorder persists collection events and operator notes.
type Recorder interface {
	Record(ev logbook.CollectionEvent) error
	Note(level, msg string) error
}

// StatusSink receives display events.
type StatusSink interface {
	Show(ev display.Event)
}

// Params are the tuning knobs of the cycle.
type Params struct {
	ScanInterval       time.Duration
	CollectionDuration time.Duration
	BinFullCooldown    time.Duration
	FaultBackoff       time.Duration
	DetectionPause     time.Duration
	ObstacleTurn       time.Duration

	ConfidenceThreshold float64
	MinDistanceCm       float64
	CruiseSpeed         int
	TurnSpeed           int
}

// ParamsFromConfig maps configuration values onto loop parameters.
func ParamsFromConfig(cfg *config.Config) Params {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return Params{
		ScanInterval:        ms(cfg.ScanIntervalMS),
		CollectionDuration:  ms(cfg.CollectionDurationMS),
		BinFullCooldown:     ms(cfg.BinFullCooldownMS),
		FaultBackoff:        ms(cfg.FaultBackoffMS),
		DetectionPause:      ms(cfg.DetectionPauseMS),
		ObstacleTurn:        ms(cfg.ObstacleTurnMS),
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MinDistanceCm:       cfg.MinDistanceCm,
		CruiseSpeed:         cfg.DefaultSpeed,
		TurnSpeed:           cfg.TurnSpeed,
	}
}

// Deps wires the loop's collaborators. Telemetry may be nil.
type Deps struct {
	Frames     vision.Source
	Classifier classifier.Classifier
	Sensors    Sensors
	Motors     Actuators
	Screen     StatusSink
	Recorder   Recorder
	Telemetry  *telemetry.Publisher
}

// Loop is the mission controller.
type Loop struct {
	p Params
	d Deps

	state       State
	collections uint64
	rotation    int
}

// New builds a loop in the scanning state.
func New(p Params, d Deps) *Loop {
	return &Loop{p: p, d: d, state: StateScanning}
}

// State returns the current controller state.
func (l *Loop) State() State { return l.state }

// Collections returns the number of completed collections.
func (l *Loop) Collections() uint64 { return l.collections }

func (l *Loop) setState(s State) {
	if l.state == s {
		return
	}
	log.Printf("control: state %s -> %s", l.state, s)
	l.state = s
	l.d.Telemetry.PublishState(s.String(), l.collections)
}

// wait blocks for d or until the context is canceled. It reports
// whether the full duration elapsed.
func (l *Loop) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Run executes cycles until the context is canceled. The motors are
// stopped on every exit path.
func (l *Loop) Run(ctx context.Context) error {
	defer l.d.Motors.StopAll()

	l.d.Telemetry.PublishState(l.state.String(), l.collections)
	log.Printf("control: mission start, scanning every %v", l.p.ScanInterval)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		start := time.Now()
		if err := l.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.fault(ctx, err)
		}

		if rem := l.p.ScanInterval - time.Since(start); rem > 0 {
			if !l.wait(ctx, rem) {
				return ctx.Err()
			}
		}
	}
}

// cycle is one perception-decision-actuation pass. A returned error
// means an actuator failed and the loop must take the fault path;
// perception failures never surface here.
func (l *Loop) cycle(ctx context.Context) error {
	verdict := l.classifyFrame(ctx)
	snap := l.d.Sensors.Poll()
	l.d.Telemetry.PublishSnapshot(snap)

	if snap.BinFull {
		return l.binFull(ctx)
	}
	if snap.DistanceCm != nil && *snap.DistanceCm < l.p.MinDistanceCm {
		return l.avoidObstacle(ctx, *snap.DistanceCm)
	}
	if verdict.Detected && verdict.Confidence > l.p.ConfidenceThreshold {
		return l.collect(ctx, verdict, snap)
	}

	// Routine cruising. Forward is idempotent, so re-asserting it
	// every cycle also recovers propulsion after bin-full or obstacle
	// stops.
	if err := l.d.Motors.Forward(l.p.CruiseSpeed); err != nil {
		return err
	}
	l.rotateStatus(snap)
	return nil
}

// classifyFrame captures and classifies one frame. Any failure is a
// negative detection for this cycle, never a fault.
func (l *Loop) classifyFrame(ctx context.Context) classifier.Verdict {
	frame, err := l.d.Frames.Capture(ctx)
	if err != nil {
		log.Printf("control: frame capture failed, skipping detection: %v", err)
		return classifier.Verdict{}
	}
	verdict, err := l.d.Classifier.Classify(ctx, frame)
	if err != nil {
		log.Printf("control: classification failed, treating as no detection: %v", err)
		return classifier.Verdict{}
	}
	return verdict
}

// collect runs one full collection sequence. The conveyor is started
// and stopped exactly once and exactly one event is recorded.
func (l *Loop) collect(ctx context.Context, v classifier.Verdict, snap sensing.Snapshot) error {
	l.d.Screen.Show(display.Event{Kind: display.KindDetection, Confidence: v.Confidence})

	if err := l.d.Motors.StopPropulsion(); err != nil {
		return err
	}
	if !l.wait(ctx, l.p.DetectionPause) {
		return ctx.Err()
	}

	l.setState(StateCollecting)
	l.d.Screen.Show(display.Event{Kind: display.KindCollecting, Collections: l.collections})

	if err := l.d.Motors.StartCollector(); err != nil {
		return err
	}
	done := l.wait(ctx, l.p.CollectionDuration)
	if err := l.d.Motors.StopCollector(); err != nil {
		return err
	}
	if !done {
		return ctx.Err()
	}

	l.collections++
	ev := l.buildEvent(v, snap)
	if err := l.d.Recorder.Record(ev); err != nil {
		// The collection happened; a persistence problem must not
		// fault the motors.
		log.Printf("control: record collection: %v", err)
	}
	l.d.Telemetry.PublishCollection(ev)

	l.setState(StateScanning)
	l.rotation = 0
	return l.d.Motors.Forward(l.p.CruiseSpeed)
}

func (l *Loop) buildEvent(v classifier.Verdict, snap sensing.Snapshot) logbook.CollectionEvent {
	ev := logbook.CollectionEvent{
		Timestamp:   time.Now(),
		Detected:    v.Detected,
		Confidence:  v.Confidence,
		Collections: l.collections,
		DistanceCm:  snap.DistanceCm,
		Orientation: snap.Orientation,
	}
	if snap.GPS != nil {
		lat, lon := snap.GPS.Lat, snap.GPS.Lon
		ev.Lat, ev.Lon = &lat, &lon
	}
	if snap.WeightKg != nil {
		ev.WeightKg = *snap.WeightKg
	}
	return ev
}

// binFull stops everything and holds for the cooldown. The float
// switch is re-read next cycle; the state clears itself once the bin
// has been emptied.
func (l *Loop) binFull(ctx context.Context) error {
	l.setState(StateBinFull)
	l.d.Motors.StopAll()
	l.d.Screen.Show(display.Event{Kind: display.KindBinFull})

	if !l.wait(ctx, l.p.BinFullCooldown) {
		return ctx.Err()
	}
	l.setState(StateScanning)
	return nil
}

// avoidObstacle backs the craft off a close return: stop, turn to
// starboard for the configured time, stop again. The next cycle
// resumes cruising on a clear reading.
func (l *Loop) avoidObstacle(ctx context.Context, cm float64) error {
	log.Printf("control: obstacle at %.1fcm, turning", cm)
	l.d.Screen.Show(display.Event{Kind: display.KindObstacle, DistanceCm: cm})

	if err := l.d.Motors.StopPropulsion(); err != nil {
		return err
	}
	if err := l.d.Motors.TurnRight(l.p.TurnSpeed); err != nil {
		return err
	}
	if !l.wait(ctx, l.p.ObstacleTurn) {
		return ctx.Err()
	}
	return l.d.Motors.StopPropulsion()
}

// rotateStatus cycles the routine display pages.
func (l *Loop) rotateStatus(snap sensing.Snapshot) {
	switch l.rotation % 3 {
	case 0:
		l.d.Screen.Show(display.Event{Kind: display.KindScanning, Collections: l.collections})
	case 1:
		ev := display.Event{Kind: display.KindPosition}
		if snap.GPS != nil {
			ev.HaveFix = true
			ev.Lat, ev.Lon = snap.GPS.Lat, snap.GPS.Lon
		}
		l.d.Screen.Show(ev)
	case 2:
		ev := display.Event{Kind: display.KindWeight, Collections: l.collections, WeightStale: snap.WeightStale}
		if snap.WeightKg != nil {
			ev.WeightKg = *snap.WeightKg
		}
		l.d.Screen.Show(ev)
	}
	l.rotation++
}

// fault parks the craft after an actuator error and backs off before
// the next attempt. Recovery is unconditional; a persistent failure
// just lands here again next cycle.
func (l *Loop) fault(ctx context.Context, cause error) {
	log.Printf("control: actuator fault: %v", cause)
	l.setState(StateFault)
	l.d.Motors.StopAll()
	l.d.Screen.Show(display.Event{Kind: display.KindError, Message: cause.Error()})

	if err := l.d.Recorder.Note("ERROR", cause.Error()); err != nil {
		log.Printf("control: record fault note: %v", err)
	}

	if !l.wait(ctx, l.p.FaultBackoff) {
		return
	}
	l.setState(StateScanning)
}
