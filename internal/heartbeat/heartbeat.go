// heartbeat blinks a pin without sleeping between toggles: it keeps polling
// a monotonic counter and toggles once the counter moved a full interval
// past the previous toggle.
package heartbeat

import (
	"context"
	"runtime"
	"time"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"github.com/juju/loggo"
	"periph.io/x/periph/conn/gpio"
)

var logger = loggo.GetLogger("main.heartbeat")

// Resolution is the unit the counter is read in.
type Resolution struct {
	Name string
	Unit time.Duration
}

var (
	Nano  = Resolution{Name: "nanosecond", Unit: time.Nanosecond}
	Micro = Resolution{Name: "microsecond", Unit: time.Microsecond}
	Milli = Resolution{Name: "millisecond", Unit: time.Millisecond}
)

// ParseResolution maps the command line selector n, r or m.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "n":
		return Nano, nil
	case "r":
		return Micro, nil
	case "m":
		return Milli, nil
	case "":
		return Resolution{}, failure.New(failure.MissingArgument, "heartbeat", "one argument expected: n, r or m")
	default:
		return Resolution{}, failure.New(failure.UnsupportedOption, "heartbeat", "unsupported argument %q", s)
	}
}

func (r Resolution) count(d time.Duration) uint64 {
	return uint64(d / r.Unit)
}

// Clock reports the time elapsed since some fixed point, it must never go
// backwards.
type Clock interface {
	Elapsed() time.Duration
}

type monotonic struct {
	start time.Time
}

// Monotonic returns a Clock backed by the runtime's monotonic clock.
func Monotonic() Clock {
	return &monotonic{start: time.Now()}
}

func (m *monotonic) Elapsed() time.Duration {
	return time.Since(m.start)
}

type Toggler interface {
	Toggle() (gpio.Level, error)
}

type Options struct {
	Resolution Resolution
	Interval   time.Duration
	Beats      int
	Clock      Clock
	// OnBeat is called after every toggle with the 1-based beat number.
	OnBeat func(beat int, level gpio.Level)
}

// Run toggles pin opts.Beats times, the first toggle happens right away.
func Run(ctx context.Context, pin Toggler, opts Options) error {
	clock := opts.Clock
	if clock == nil {
		clock = Monotonic()
	}
	res := opts.Resolution
	if res.Unit <= 0 {
		res = Milli
	}
	interval := res.count(opts.Interval)

	logger.Debugf("%s heartbeat: %d beats every %d counts", res.Name, opts.Beats, interval)

	var previous uint64
	first := true
	for beat := 1; beat <= opts.Beats; {
		select {
		case <-ctx.Done():
			return failure.Wrap(ctx.Err(), failure.Interrupted, "heartbeat")
		default:
		}

		now := res.count(clock.Elapsed())
		if !first && now-previous < interval {
			runtime.Gosched()
			continue
		}

		l, err := pin.Toggle()
		if err != nil {
			return failure.Wrap(err, failure.PinInitFailure, "heartbeat")
		}
		first = false
		previous = now

		if opts.OnBeat != nil {
			opts.OnBeat(beat, l)
		}
		beat++
	}
	return nil
}
