package main

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/spf13/cobra"

	"github.com/hmolavi/PlantProtector/comm"
	"github.com/hmolavi/PlantProtector/param"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive station console",
	Long: `Shell opens an interactive console on the link: transport commands are
sent as you issue them, and the local parameter store is available
alongside. Type help for the command list.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// console bundles the state shared by the shell commands.
type console struct {
	initiator *comm.Initiator
	store     *param.Store
}

const consoleKey = "$console"

func consoleFrom(c *ishell.Context) *console {
	return c.Get(consoleKey).(*console)
}

func runShell(cmd *cobra.Command, args []string) error {
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

	store, err := openParamStore(param.LevelUser)
	if err != nil {
		return err
	}

	sh := ishell.New()
	sh.Println("PlantProtector console. Type help for commands.")
	sh.SetPrompt(fmt.Sprintf("%s > ", portName))
	sh.Set(consoleKey, &console{initiator: initiator, store: store})

	for _, c := range shellCommands {
		sh.AddCmd(c)
	}

	sh.Run()

	return nil
}

var shellCommands = []*ishell.Cmd{
	{
		Name: "send",
		Help: "COMMAND [PAYLOAD] - send one transport command",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("command name expected"))

				return
			}

			wire, ok := comm.LookupCommandByName(c.Args[0])
			if !ok || wire.IsControl() {
				c.Err(fmt.Errorf("unknown command %q", c.Args[0]))

				return
			}

			payload := strings.Join(c.Args[1:], " ")
			reply, err := consoleFrom(c).initiator.Execute(wire.Code, payload)
			if err != nil {
				c.Err(err)

				return
			}

			if wire.Read {
				c.Println(reply)
			} else {
				c.Println("OK")
			}
		},
	},
	{
		Name:    "commands",
		Aliases: []string{"cmds"},
		Help:    "list the transport command vocabulary",
		Func: func(c *ishell.Context) {
			for _, cmd := range comm.Commands() {
				if cmd.IsControl() {
					continue
				}
				kind := "write"
				if cmd.Read {
					kind = "read"
				}
				c.Printf("%-12s %-5s %s\n", cmd.Name, kind, cmd.Description)
			}
		},
	},
	{
		Name: "params",
		Help: "[NAME [VALUE]] - list, get or set parameters",
		Func: func(c *ishell.Context) {
			store := consoleFrom(c).store

			switch len(c.Args) {
			case 0:
				for _, snap := range store.List() {
					c.Printf("%-20s = %s\n", snap.Name, snap.Value)
				}

			case 1:
				value, err := store.Show(c.Args[0])
				if err != nil {
					c.Err(err)

					return
				}
				c.Println(value)

			default:
				if err := store.Set(c.Args[0], strings.Join(c.Args[1:], " ")); err != nil {
					c.Err(err)

					return
				}
				if _, err := store.SaveDirty(paramsFile); err != nil {
					c.Err(err)
				}
			}
		},
	},
	{
		Name: "metrics",
		Help: "show link transport counters",
		Func: func(c *ishell.Context) {
			m := consoleFrom(c).initiator.Metrics()
			c.Printf("frames sent       %d\n", m.FrameSendCount.Load())
			c.Printf("frames received   %d\n", m.FrameRecvCount.Load())
			c.Printf("ack retries       %d\n", m.AckRetryCount.Load())
			c.Printf("reply retries     %d\n", m.ReplyRetryCount.Load())
			c.Printf("checksum errors   %d\n", m.ChecksumErrCount.Load())
			c.Printf("nacks sent        %d\n", m.NackCount.Load())
		},
	},
}
