package sensor

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/hmolavi/PlantProtector/logger"
)

var (
	// ErrRangeFault is returned when the divider voltage leaves the
	// channel's [Vmin, Vmax] window, indicating a broken or shorted probe.
	ErrRangeFault = errors.New("sensor: reading outside plausible range")

	// ErrInvalidConfig is returned for an unusable thermistor configuration.
	ErrInvalidConfig = errors.New("sensor: invalid configuration")
)

// kelvinAt0C converts between the Kelvin and Celsius scales.
const kelvinAt0C = 273.15

// avgWindow is the number of recent readings kept for the moving average.
const avgWindow = 25

// ADC supplies raw divider voltages in millivolts. Implementations wrap
// whatever converter hardware is present; tests use a stub.
type ADC interface {
	ReadMillivolts() (float64, error)
}

// ADCFunc adapts a function to the ADC interface.
type ADCFunc func() (float64, error)

func (f ADCFunc) ReadMillivolts() (float64, error) { return f() }

// ThermistorConfig describes one NTC thermistor in a pull-up divider.
//
// T0 and Beta come from the part's datasheet: RT0 is the resistance at T0,
// Beta the B-parameter. Rs is the series (pull-up) resistor and Vref the
// divider supply, both fixed by the board. Vmin and Vmax bound the divider
// voltages a healthy probe can produce.
type ThermistorConfig struct {
	Name string

	T0   float64 // reference temperature, Kelvin
	RT0  float64 // resistance at T0, ohms
	Beta float64 // B-parameter, Kelvin
	Rs   float64 // series resistor, ohms
	Vref float64 // divider supply, millivolts

	Vmin float64 // lowest plausible reading, millivolts
	Vmax float64 // highest plausible reading, millivolts
}

func (cfg ThermistorConfig) validate() error {
	switch {
	case cfg.Name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidConfig)
	case cfg.T0 <= 0 || cfg.RT0 <= 0 || cfg.Beta <= 0:
		return fmt.Errorf("%w: %s: T0, RT0 and Beta must be positive", ErrInvalidConfig, cfg.Name)
	case cfg.Rs <= 0 || cfg.Vref <= 0:
		return fmt.Errorf("%w: %s: Rs and Vref must be positive", ErrInvalidConfig, cfg.Name)
	case cfg.Vmin < 0 || cfg.Vmax <= cfg.Vmin || cfg.Vmax >= cfg.Vref:
		return fmt.Errorf("%w: %s: need 0 <= Vmin < Vmax < Vref", ErrInvalidConfig, cfg.Name)
	}

	return nil
}

// Thermistor linearizes one ADC channel. Safe for concurrent use.
type Thermistor struct {
	cfg    ThermistorConfig
	adc    ADC
	logger logger.Logger

	mu      sync.Mutex
	failed  bool
	samples []float64
	next    int
}

// NewThermistor creates a thermistor on the given ADC channel.
func NewThermistor(cfg ThermistorConfig, adc ADC) (*Thermistor, error) {
	if adc == nil {
		return nil, fmt.Errorf("%w: adc is nil", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Thermistor{
		cfg:    cfg,
		adc:    adc,
		logger: logger.GetLogger(),
	}, nil
}

// Name returns the configured channel name.
func (th *Thermistor) Name() string { return th.cfg.Name }

// Failed reports whether the most recent reading latched a range fault.
func (th *Thermistor) Failed() bool {
	th.mu.Lock()
	defer th.mu.Unlock()

	return th.failed
}

// Temperature reads the channel once and returns degrees Celsius.
//
// A divider voltage outside [Vmin, Vmax] latches the fault flag and
// returns ErrRangeFault; the next in-range reading clears the latch.
func (th *Thermistor) Temperature() (float64, error) {
	v, err := th.adc.ReadMillivolts()
	if err != nil {
		return 0, fmt.Errorf("sensor: %s: %w", th.cfg.Name, err)
	}

	th.mu.Lock()
	defer th.mu.Unlock()

	if v < th.cfg.Vmin || v > th.cfg.Vmax {
		th.failed = true
		th.logger.Warn("sensor: range fault",
			"channel", th.cfg.Name,
			"millivolts", v,
			"vmin", th.cfg.Vmin,
			"vmax", th.cfg.Vmax,
		)

		return 0, fmt.Errorf("%w: %s read %.1f mV", ErrRangeFault, th.cfg.Name, v)
	}
	th.failed = false

	// NTC B-parameter equation, pull-up divider:
	//   Rt = Rs * (Vref/V - 1)
	//   1/T = 1/T0 + ln(Rt/RT0)/Beta
	rt := th.cfg.Rs * (th.cfg.Vref/v - 1.0)
	inv := 1.0/th.cfg.T0 + math.Log(rt/th.cfg.RT0)/th.cfg.Beta
	temp := 1.0/inv - kelvinAt0C

	th.record(temp)

	return temp, nil
}

// record appends a sample to the moving-average window. Caller holds mu.
func (th *Thermistor) record(temp float64) {
	if len(th.samples) < avgWindow {
		th.samples = append(th.samples, temp)

		return
	}

	th.samples[th.next] = temp
	th.next = (th.next + 1) % avgWindow
}

// Average returns the moving average over the recent sample window. The
// second return is false until at least one reading succeeded.
func (th *Thermistor) Average() (float64, bool) {
	th.mu.Lock()
	defer th.mu.Unlock()

	if len(th.samples) == 0 {
		return 0, false
	}

	var sum float64
	for _, s := range th.samples {
		sum += s
	}

	return sum / float64(len(th.samples)), true
}
