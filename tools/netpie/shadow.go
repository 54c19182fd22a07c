package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/netpie/iot/netpie"
)

func newShadowCommand(a *app) *cobra.Command {
	shadowCmd := &cobra.Command{
		Use:   "shadow",
		Short: "Access device shadows",
	}
	shadowCmd.AddCommand(newShadowGetCommand(a))
	return shadowCmd
}

func newShadowGetCommand(a *app) *cobra.Command {
	flags := &itemFlags{}
	var valueOnly bool

	cmd := &cobra.Command{
		Use:   "get [alias]",
		Short: "Read shadow data for an alias",
		Example: `  netpie shadow get led
  netpie shadow get led --value-only
  netpie shadow get --items aliases.yaml --continue-on-fail`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && flags.itemsFile == "" {
				return errors.New("either an alias or --items is required")
			}
			if valueOnly {
				if len(args) == 0 {
					return errors.New("--value-only needs an alias")
				}
				device := netpie.NewDevice(a.executor, a.config.Credential)
				value, err := device.ReadShadow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if s, ok := value.(string); ok {
					_, err = fmt.Fprintln(a.out, s)
					return err
				}
				return a.print(value)
			}

			parameters := map[string]interface{}{}
			if len(args) == 1 {
				parameters["alias"] = args[0]
			}
			batch, err := flags.batch(parameters)
			if err != nil {
				return err
			}
			return a.execute(cmd, netpie.ShadowGet.Resource, netpie.ShadowGet.Name, batch)
		},
	}
	cmd.Flags().StringVar(&flags.itemsFile, "items", "", "YAML file with a batch of items")
	cmd.Flags().BoolVar(&flags.continueOnFail, "continue-on-fail", false, "record failing items instead of aborting")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "print the raw API response")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "request timeout, default 15s")
	cmd.Flags().BoolVar(&valueOnly, "value-only", false, "print only the shadow value")
	return cmd
}
