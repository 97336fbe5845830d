// Package relayctlcli provides the relayctl command line interface.
package relayctlcli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/relayhid/relayctl/internal/relaysvc"
	"github.com/relayhid/relayctl/pkg/relayctl"
)

func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	var (
		serial  string
		path    string
		ports   string
		action  string
		delay   float64
		config  string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "relayctl",
		Short: "Control USB HID power relays",
		Long: `relayctl discovers USB HID power relays and switches their ports.
Without --action it shows status for all discovered relays.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// All input validation happens before any device I/O.
			req := relaysvc.Request{
				Serial: serial,
				Path:   path,
				Action: relaysvc.ActionStatus,
				Delay:  time.Duration(delay * float64(time.Second)),
			}
			var err error
			if cmd.Flags().Changed("action") {
				req.Action, err = relaysvc.ParseAction(action)
				if err != nil {
					return err
				}
			}
			req.Ports, err = relaysvc.ParsePorts(ports, relaysvc.MaxPorts)
			if err != nil {
				return err
			}
			cfg, err := relayctl.LoadConfig(config, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			app, err := relayctl.NewApp(cfg, verbose, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return app.Run(req)
		},
	}
	cmd.Flags().StringVarP(&serial, "relay", "l", "", "serial number of the relay to operate on")
	cmd.Flags().StringVarP(&path, "path", "u", "", "bus path of the relay to operate on")
	cmd.Flags().StringVarP(&ports, "ports", "p", "all", "ports to operate on, e.g. 1,3-5")
	cmd.Flags().StringVarP(&action, "action", "a", "", "action for the affected ports: off|on|cycle (0|1|2)")
	cmd.Flags().Float64VarP(&delay, "delay", "d", relaysvc.DefaultCycleDelay.Seconds(), "delay in seconds between power cycle phases")
	cmd.Flags().StringVar(&config, "config", defaultConfigPath(), "relay profile config file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	return cmd
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "relayctl.yml"
	}
	return filepath.Join(dir, "relayctl", "relayctl.yml")
}
