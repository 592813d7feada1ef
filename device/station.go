package device

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hmolavi/PlantProtector/comm"
	"github.com/hmolavi/PlantProtector/logger"
)

// TimeLayout is the clock format exchanged over the wire. At 19 bytes it
// fits a frame payload with room to spare.
const TimeLayout = "2006-01-02 15:04:05"

var (
	// ErrEmptyLog is returned when a read finds no logged lines.
	ErrEmptyLog = errors.New("device: log is empty")

	// ErrBadTime is returned when an RTC set payload does not parse.
	ErrBadTime = errors.New("device: malformed time")
)

// Station is the responder-side command handler. It persists appended
// lines to a log file and keeps a host clock with a settable offset, the
// software analogue of a battery-backed RTC.
//
// Station implements comm.Handler and is safe for the single-dispatcher
// use the transport gives it; the clock is additionally safe to read
// concurrently.
type Station struct {
	logPath string
	logger  logger.Logger

	mu     sync.RWMutex
	offset time.Duration

	// now is the wall clock source, replaceable in tests.
	now func() time.Time
}

// NewStation creates a station logging to logPath.
func NewStation(logPath string) (*Station, error) {
	if logPath == "" {
		return nil, errors.New("device: log path is empty")
	}

	return &Station{
		logPath: logPath,
		logger:  logger.GetLogger(),
		now:     time.Now,
	}, nil
}

// Now returns the station's RTC time.
func (st *Station) Now() time.Time {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.now().Add(st.offset)
}

// SetClock adjusts the RTC so that Now reports the given time.
func (st *Station) SetClock(t time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.offset = t.Sub(st.now())
}

// HandleCommand dispatches one validated transport command.
func (st *Station) HandleCommand(cmd comm.Command, payload string) (string, error) {
	switch cmd.Code {
	case comm.CmdSDRead:
		return st.lastLine()

	case comm.CmdSDAppend:
		return "", st.appendLine(payload)

	case comm.CmdSDTimestampAppend:
		stamped := fmt.Sprintf("\n%s %s", st.Now().Format(TimeLayout), payload)

		return "", st.appendLine(stamped)

	case comm.CmdRTCRead:
		return st.Now().Format(TimeLayout), nil

	case comm.CmdRTCSet:
		t, err := time.Parse(TimeLayout, strings.TrimSpace(payload))
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrBadTime, payload)
		}
		st.SetClock(t)
		st.logger.Info("device: clock set", "time", t.Format(TimeLayout))

		return "", nil

	default:
		return "", fmt.Errorf("device: command %q not implemented", cmd.Name)
	}
}

// appendLine writes one line to the log file, creating it on first use.
func (st *Station) appendLine(line string) error {
	f, err := os.OpenFile(st.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("device: opening log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("device: appending log: %w", err)
	}

	return nil
}

// lastLine returns the final non-empty log line, truncated to the frame
// payload capacity.
func (st *Station) lastLine() (string, error) {
	data, err := os.ReadFile(st.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrEmptyLog
		}

		return "", fmt.Errorf("device: reading log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if len(line) > comm.DataLength {
			line = line[:comm.DataLength]
		}

		return line, nil
	}

	return "", ErrEmptyLog
}
