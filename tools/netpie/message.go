package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/netpie/iot/netpie"
)

func newMessageCommand(a *app) *cobra.Command {
	messageCmd := &cobra.Command{
		Use:   "message",
		Short: "Publish messages to device topics",
	}
	messageCmd.AddCommand(newMessagePublishCommand(a))
	return messageCmd
}

func newMessagePublishCommand(a *app) *cobra.Command {
	flags := &itemFlags{}
	var contentType string

	cmd := &cobra.Command{
		Use:   "publish [topic] [payload]",
		Short: "Publish a message to a topic",
		Example: `  netpie message publish led ledon
  netpie message publish led '{"state":"on"}' --content-type application/json
  netpie message publish --items messages.yaml`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 && flags.itemsFile == "" {
				return errors.New("either topic and payload or --items is required")
			}

			parameters := map[string]interface{}{}
			if len(args) == 2 {
				parameters["topic"] = args[0]
				parameters["payload"] = args[1]
			}
			if contentType != "" {
				parameters["options"] = map[string]interface{}{"contentType": contentType}
			}
			batch, err := flags.batch(parameters)
			if err != nil {
				return err
			}
			return a.execute(cmd, netpie.MessagePublish.Resource, netpie.MessagePublish.Name, batch)
		},
	}
	cmd.Flags().StringVar(&flags.itemsFile, "items", "", "YAML file with a batch of items")
	cmd.Flags().BoolVar(&flags.continueOnFail, "continue-on-fail", false, "record failing items instead of aborting")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "print the raw API response")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "request timeout, default 15s")
	cmd.Flags().StringVar(&contentType, "content-type", "", "text/plain or application/json, default text/plain")
	return cmd
}
