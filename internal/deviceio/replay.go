package deviceio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"switchlog/internal/timecode"
)

// Step is one scripted device event, emitted After the feed starts.
type Step struct {
	After time.Duration
	Cut   *SourceID
	Tick  *TimecodeTick
}

// Script is an ordered list of device events used to replay a recorded
// session without live hardware.
type Script struct {
	Steps []Step
}

// ParseScript reads a replay script. Each non-empty, non-comment line is
//
//	+<offset> tick <timecode> <transport-state>
//	+<offset> cut <source-id> [label...]
//
// where offset is a Go duration relative to feed start, e.g. "+1.5s".
func ParseScript(r io.Reader, rate timecode.Rate) (*Script, error) {
	script := &Script{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("replay script line %d: expected offset, kind, and arguments", lineNo)
		}
		offset, err := time.ParseDuration(strings.TrimPrefix(fields[0], "+"))
		if err != nil {
			return nil, fmt.Errorf("replay script line %d: parse offset %q: %w", lineNo, fields[0], err)
		}
		switch fields[1] {
		case "tick":
			if len(fields) < 4 {
				return nil, fmt.Errorf("replay script line %d: tick needs timecode and state", lineNo)
			}
			tc, err := timecode.Parse(rate, fields[2])
			if err != nil {
				return nil, fmt.Errorf("replay script line %d: %w", lineNo, err)
			}
			script.Steps = append(script.Steps, Step{
				After: offset,
				Tick:  &TimecodeTick{Timecode: tc, State: ParseTransportState(fields[3])},
			})
		case "cut":
			src := SourceID{ID: fields[2]}
			if len(fields) > 3 {
				src.Label = strings.Trim(strings.Join(fields[3:], " "), `"`)
			}
			script.Steps = append(script.Steps, Step{After: offset, Cut: &src})
		default:
			return nil, fmt.Errorf("replay script line %d: unknown event kind %q", lineNo, fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay script: %w", err)
	}
	return script, nil
}

// ReplayFeed plays a Script back on the standard feed interfaces. It serves
// as both SwitcherFeed and RecorderFeed for tests and the daemon's replay
// mode.
type ReplayFeed struct {
	script *Script

	events chan SourceChanged
	ticks  chan TimecodeTick

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

// NewReplayFeed constructs an idle feed; call Start to begin emission.
func NewReplayFeed(script *Script) *ReplayFeed {
	return &ReplayFeed{
		script: script,
		events: make(chan SourceChanged, 16),
		ticks:  make(chan TimecodeTick, 64),
		done:   make(chan struct{}),
	}
}

// Start emits the scripted steps on their offsets until the script ends or
// the context is canceled. Channels are closed when emission finishes.
func (f *ReplayFeed) Start(ctx context.Context) {
	f.startOnce.Do(func() {
		go f.run(ctx)
	})
}

func (f *ReplayFeed) run(ctx context.Context) {
	defer close(f.events)
	defer close(f.ticks)

	begin := time.Now()
	for _, step := range f.script.Steps {
		wait := time.Until(begin.Add(step.After))
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			case <-f.done:
				return
			}
		}
		now := time.Now()
		switch {
		case step.Cut != nil:
			select {
			case f.events <- SourceChanged{Source: *step.Cut, ObservedAt: now}:
			case <-ctx.Done():
				return
			case <-f.done:
				return
			}
		case step.Tick != nil:
			tick := *step.Tick
			tick.ObservedAt = now
			select {
			case f.ticks <- tick:
			case <-ctx.Done():
				return
			case <-f.done:
				return
			}
		}
	}
}

// Events implements SwitcherFeed.
func (f *ReplayFeed) Events() <-chan SourceChanged { return f.events }

// Ticks implements RecorderFeed.
func (f *ReplayFeed) Ticks() <-chan TimecodeTick { return f.ticks }

// Close stops emission. Safe to call more than once.
func (f *ReplayFeed) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}
