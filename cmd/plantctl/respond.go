package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hmolavi/PlantProtector/comm"
	"github.com/hmolavi/PlantProtector/device"
	"github.com/hmolavi/PlantProtector/logger"
)

var respondLogFile string

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Run the answering station on this host",
	Long: `Respond services the link as the station: it accumulates incoming frames,
acknowledges them, executes the carried commands against a local log file
and clock, and answers read commands with reply frames. Runs until
interrupted.`,
	RunE: runRespond,
}

func init() {
	respondCmd.Flags().StringVar(&respondLogFile, "log", "plant.log", "Station log file")
	rootCmd.AddCommand(respondCmd)
}

func runRespond(cmd *cobra.Command, args []string) error {
	station, err := device.NewStation(respondLogFile)
	if err != nil {
		return err
	}

	bus, err := openSerialBus(portName, baudRate)
	if err != nil {
		return err
	}
	defer bus.Close()

	cfg, err := comm.NewTransportConfig()
	if err != nil {
		return err
	}

	responder, err := comm.NewResponder(bus, station, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("station listening", "port", portName, "log", respondLogFile)

	return pumpSerial(ctx, bus, responder)
}

// pumpSerial feeds port bytes into the responder until ctx is cancelled.
//
// Feed routes each byte: ACK/NACK controls while a reply is pending,
// frame accumulation otherwise; a non-control byte releases an abandoned
// reply so a new command can never be misrouted as status bytes. A read
// timeout with a frame partially accumulated means the accumulator is
// misaligned (frames arrive back to back), so the partial frame is
// dropped to realign on the next boundary. The short timeout also keeps
// the loop responsive to cancellation.
func pumpSerial(ctx context.Context, bus *serialBus, responder *comm.Responder) error {
	buf := make([]byte, comm.ChunkEncodedSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := bus.port.Read(buf)
		if err != nil {
			return err
		}

		if n == 0 {
			if responder.Resync() {
				logger.Warn("partial frame dropped on idle line")
			}

			continue
		}

		for _, b := range buf[:n] {
			responder.Feed(b)
		}

		if responder.Ready() {
			if err := responder.Process(); err != nil {
				logger.Warn("frame rejected", "error", err)
			}
		}
	}
}
