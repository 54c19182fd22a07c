package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/netpie/core/logger"
	"github.com/relabs-tech/netpie/iot/api"
	"github.com/relabs-tech/netpie/iot/netpie"
)

// app carries the state shared by all commands
type app struct {
	out      io.Writer
	envFile  string
	logLevel string

	config   netpie.Config
	executor *netpie.Executor
}

// newRootCommand returns the netpie command with all subcommands attached.
// Results are written as JSON to out.
func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:   "netpie",
		Short: "Read device shadows and publish messages on NETPIE",
		Long: `netpie runs the NETPIE device operations from the command line.

The device credential is taken from the environment variables NETPIE_CLIENT_ID
and NETPIE_TOKEN, which may also be set in a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "file with environment variables, ignored if missing")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	rootCmd.AddCommand(newShadowCommand(a))
	rootCmd.AddCommand(newMessageCommand(a))
	rootCmd.AddCommand(newCredentialCommand(a))
	return rootCmd
}

// setup loads the environment and builds the executor
func (a *app) setup() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot load %s: %w", a.envFile, err)
		}
	}
	if err := envdecode.Decode(&a.config); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}

	level := a.config.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger.InitLogger(logger.ParseLevel(level))

	executor, err := a.config.NewExecutor()
	if err != nil {
		return err
	}
	a.executor = executor
	return nil
}

// execute runs batch and prints the records
func (a *app) execute(cmd *cobra.Command, resource, operation string, batch api.BatchRequest) error {
	records, err := a.executor.Execute(cmd.Context(), batch.Execution(resource, operation, a.config.Credential))
	if err != nil {
		return err
	}
	return a.print(api.BatchResponse{Records: records})
}

func (a *app) print(v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(jsonData))
	return err
}
