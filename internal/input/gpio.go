package input

import (
	"fmt"
	"log/slog"

	gpiod "github.com/warthog618/go-gpiocdev"
)

// GPIOConfig selects the button line.
type GPIOConfig struct {
	Chip      string
	Pin       int
	ActiveLow bool
}

// GPIOSource feeds edges of a GPIO line into a Debouncer.
type GPIOSource struct {
	chip *gpiod.Chip
	line *gpiod.Line
}

// OpenGPIO requests the line with both-edge detection. The kernel timestamps
// each event, so the debouncer sees edge times rather than delivery times.
func OpenGPIO(cfg GPIOConfig, d *Debouncer) (*GPIOSource, error) {
	chip, err := gpiod.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", cfg.Chip, err)
	}

	opts := []gpiod.LineReqOption{
		gpiod.AsInput,
		gpiod.WithBothEdges,
		gpiod.WithEventHandler(func(evt gpiod.LineEvent) {
			d.OnEdge(evt.Timestamp)
		}),
	}
	if cfg.ActiveLow {
		opts = append(opts, gpiod.WithPullUp)
	} else {
		opts = append(opts, gpiod.WithPullDown)
	}

	line, err := chip.RequestLine(cfg.Pin, opts...)
	if err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("request gpio line %d: %w", cfg.Pin, err)
	}

	slog.Info("Watching button line", slog.String("chip", cfg.Chip), slog.Int("pin", cfg.Pin))
	return &GPIOSource{chip: chip, line: line}, nil
}

func (s *GPIOSource) Close() error {
	lerr := s.line.Close()
	cerr := s.chip.Close()
	if lerr != nil {
		return lerr
	}
	return cerr
}

// ReadLevel samples a line once, returning true when it is at its active
// level. It is used at boot to read the setup-mode jumper.
func ReadLevel(cfg GPIOConfig) (bool, error) {
	chip, err := gpiod.NewChip(cfg.Chip)
	if err != nil {
		return false, fmt.Errorf("open gpio chip %s: %w", cfg.Chip, err)
	}
	defer chip.Close()

	bias := gpiod.WithPullDown
	if cfg.ActiveLow {
		bias = gpiod.WithPullUp
	}
	line, err := chip.RequestLine(cfg.Pin, gpiod.AsInput, bias)
	if err != nil {
		return false, fmt.Errorf("request gpio line %d: %w", cfg.Pin, err)
	}
	defer line.Close()

	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read gpio line %d: %w", cfg.Pin, err)
	}
	if cfg.ActiveLow {
		return v == 0, nil
	}
	return v == 1, nil
}
