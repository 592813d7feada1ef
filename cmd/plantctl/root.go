package main

import (
	"github.com/spf13/cobra"

	"github.com/hmolavi/PlantProtector/logger"
	"github.com/hmolavi/PlantProtector/param"
)

var (
	portName   string
	baudRate   int
	paramsFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "plantctl",
	Short: "Plant monitor link console",
	Long: `Plantctl talks to a plant-monitor station over its framed serial link.

Frames carry one command byte and a 29-byte ASCII payload, protected by a
CRC-16 checksum and Hamming(7,4) forward error correction. The send command
drives the link as the initiator; respond runs the answering station on
this host; shell opens an interactive console.

Serial connection: --port /dev/ttyUSB0 [--baud 115200]`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate")
	rootCmd.PersistentFlags().StringVar(&paramsFile, "params", "plantctl-params.json", "Parameter store file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// plantParams declares the station's runtime parameters.
func plantParams() []param.Definition {
	return []param.Definition{
		{Name: "PumpEnabled", Kind: param.KindBool, Level: param.LevelUser, Default: false,
			Description: "irrigation pump master switch"},
		{Name: "SampleInterval", Kind: param.KindInt, Level: param.LevelUser, Default: 60,
			Description: "sensor sampling interval, seconds"},
		{Name: "MoistureThreshold", Kind: param.KindFloat, Level: param.LevelService, Default: 0.35,
			Description: "soil moisture fraction that triggers watering"},
		{Name: "WateringSeconds", Kind: param.KindInt, Level: param.LevelService, Default: 8,
			Description: "pump run time per watering, seconds"},
		{Name: "DeviceName", Kind: param.KindString, Level: param.LevelFactory, Default: "plant-01",
			Description: "device identity string"},
	}
}

// openParamStore builds the parameter store and loads the persisted values.
func openParamStore(level param.SecureLevel) (*param.Store, error) {
	store, err := param.NewStore(plantParams(), param.WithSecureLevel(level))
	if err != nil {
		return nil, err
	}

	if err := store.Load(paramsFile); err != nil {
		return nil, err
	}

	return store, nil
}
