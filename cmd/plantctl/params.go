package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmolavi/PlantProtector/param"
)

var secureLevelName string

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Inspect and edit the local parameter store",
}

var paramsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStoreAtLevel()
		if err != nil {
			return err
		}

		for _, snap := range store.List() {
			flags := " "
			if snap.Dirty {
				flags = "*"
			}
			def := " "
			if snap.Default {
				def = "F"
			}
			fmt.Printf("%-20s (%s%s) %-8s = %-12s %s\n",
				snap.Name, flags, def, snap.Kind, snap.Value, snap.Description)
		}

		return nil
	},
}

var paramsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one parameter value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStoreAtLevel()
		if err != nil {
			return err
		}

		value, err := store.Show(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)

		return nil
	},
}

var paramsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set one parameter and persist it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStoreAtLevel()
		if err != nil {
			return err
		}

		if err := store.Set(args[0], args[1]); err != nil {
			return err
		}

		_, err = store.SaveDirty(paramsFile)

		return err
	},
}

var paramsResetCmd = &cobra.Command{
	Use:   "reset <name>",
	Short: "Restore one parameter to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStoreAtLevel()
		if err != nil {
			return err
		}

		if err := store.Reset(args[0]); err != nil {
			return err
		}

		_, err = store.SaveDirty(paramsFile)

		return err
	},
}

func init() {
	paramsCmd.PersistentFlags().StringVar(&secureLevelName, "level", "user",
		"Active secure level (factory, service, user)")
	paramsCmd.AddCommand(paramsListCmd, paramsGetCmd, paramsSetCmd, paramsResetCmd)
	rootCmd.AddCommand(paramsCmd)
}

func parseSecureLevel(name string) (param.SecureLevel, error) {
	switch name {
	case "factory":
		return param.LevelFactory, nil
	case "service":
		return param.LevelService, nil
	case "user":
		return param.LevelUser, nil
	default:
		return 0, fmt.Errorf("unknown secure level %q", name)
	}
}

func openStoreAtLevel() (*param.Store, error) {
	level, err := parseSecureLevel(secureLevelName)
	if err != nil {
		return nil, err
	}

	return openParamStore(level)
}
