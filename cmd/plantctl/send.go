package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmolavi/PlantProtector/comm"
)

var sendCmd = &cobra.Command{
	Use:   "send <command> [payload]",
	Short: "Send one command to the station",
	Long: `Send drives the link as the initiator: it transmits the command frame
until the station acknowledges it and, for read commands, waits for the
reply frame and prints its payload.

Available commands:` + commandHelp(),
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func commandHelp() string {
	out := "\n"
	for _, cmd := range comm.Commands() {
		if cmd.IsControl() {
			continue
		}
		out += fmt.Sprintf("  %-12s %s\n", cmd.Name, cmd.Description)
	}

	return out
}

func runSend(cmd *cobra.Command, args []string) error {
	wire, ok := comm.LookupCommandByName(args[0])
	if !ok || wire.IsControl() {
		return fmt.Errorf("unknown command %q", args[0])
	}

	payload := ""
	if len(args) > 1 {
		payload = args[1]
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

	initiator, err := comm.NewInitiator(bus, cfg)
	if err != nil {
		return err
	}

	reply, err := initiator.Execute(wire.Code, payload)
	if err != nil {
		return err
	}

	if wire.Read {
		fmt.Println(reply)
	}

	return nil
}
