//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Hz is how many times per second simulated time is advanced.
	Hz int
	// Ticks stops the runner after that many advances (0 = run forever).
	Ticks uint64
	// Fast runs the simulation as fast as possible instead of in real time.
	Fast bool
}

// RunHeadless runs the firmware on the simulated video chain without opening
// a window. newApp is called once; the step it returns is called after every
// simulated timer period, like the firmware's foreground loop.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	return RunHeadlessHost(ctx, NewHost(DefaultSimConfig, os.Stdout), newApp, cfg)
}

// RunHeadlessHost is RunHeadless on a caller-provided host.
func RunHeadlessHost(ctx context.Context, h *Host, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 50
	}

	step := newApp(h)
	timerHz, _ := h.video.Clocks()
	perTick := uint64(timerHz) / uint64(cfg.Hz)
	if perTick == 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	var tickC <-chan time.Time
	if !cfg.Fast {
		d := time.Second / time.Duration(cfg.Hz)
		if d <= 0 {
			return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
		}
		t := time.NewTicker(d)
		defer t.Stop()
		tickC = t.C
	}

	var tick uint64
	for {
		if tickC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := h.video.Advance(perTick, step); err != nil {
			return err
		}
		tick++
		if cfg.Ticks > 0 && tick >= cfg.Ticks {
			return nil
		}
	}
}
