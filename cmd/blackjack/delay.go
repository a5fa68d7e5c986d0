package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
)

// Delay is a pacing flag. A bare number is read as seconds, so
// DEALER_REVEAL_DELAY=0.9 and --reveal-delay=900ms mean the same thing.
type Delay struct {
	Duration time.Duration
	Set      bool
}

// Decode implements kong.MapperValue.
func (d *Delay) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("delay", &s); err != nil {
		return err
	}
	v, err := parseDelay(s)
	if err != nil {
		return err
	}
	d.Duration, d.Set = v, true
	return nil
}

func parseDelay(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q: want seconds (0.9) or a duration (900ms)", s)
	}
	return v, nil
}
