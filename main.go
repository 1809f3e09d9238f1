package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/JyotinderSingh/dropexec/server"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

type options struct {
	configPath  string
	dataPath    string
	queryPath   string
	logLevel    string
	trace       bool
	plannerName string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "dropexec",
		Short:         "Plan and execute queries over a dataset with the dropexec engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "dropexec.yaml", "engine config file")
	rootCmd.PersistentFlags().StringVarP(&opts.dataPath, "data", "d", "", "dataset file")
	rootCmd.PersistentFlags().StringVarP(&opts.queryPath, "query", "q", "", "query request file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")
	rootCmd.PersistentFlags().BoolVar(&opts.trace, "trace", false, "log planner and operator events")
	rootCmd.PersistentFlags().StringVar(&opts.plannerName, "planner", "", "override planner (heuristic or basic)")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newExplainCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load the dataset, run the query and print the rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, request, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			result, err := db.Query(request)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
}

func newExplainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Load the dataset and print the chosen plan with its estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, request, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			out, err := db.Explain(request)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dropexec", version)
		},
	}
}

// open builds the engine from the config and flags, loads the dataset and
// reads the query request.
func (opts *options) open(logOutput io.Writer) (*server.DropDB, []byte, error) {
	if opts.dataPath == "" || opts.queryPath == "" {
		return nil, nil, errors.New("--data and --query are required")
	}

	config, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		config.Log.Level = opts.logLevel
	}
	if opts.plannerName != "" {
		config.Planner = opts.plannerName
	}
	config.Trace = config.Trace || opts.trace
	if config.Trace {
		if level, err := logrus.ParseLevel(config.Log.Level); err == nil && level < logrus.DebugLevel {
			config.Log.Level = logrus.DebugLevel.String()
		}
	}
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := config.NewLogger(logOutput)
	if err != nil {
		return nil, nil, err
	}
	dataset, err := server.LoadDataset(opts.dataPath)
	if err != nil {
		return nil, nil, err
	}
	request, err := os.ReadFile(opts.queryPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read query")
	}

	db, err := server.NewDropDB(config, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Load(dataset); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, request, nil
}

func printResult(out io.Writer, result *server.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, field := range result.Fields {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, field)
	}
	fmt.Fprintln(w)
	for _, row := range result.Rows {
		for i, val := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, val)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
