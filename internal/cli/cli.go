package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avivsinai/thread-triage/internal/config"
	"github.com/avivsinai/thread-triage/internal/logx"
)

// Version is set at build time.
var Version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	configPath string
	verbose    bool
	logFormat  string

	cfg    config.Config
	logger *zap.Logger
	stdout io.Writer
}

// Run executes the triage command line. args excludes the program name.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{cfg: config.DefaultConfig(), logger: zap.NewNop(), stdout: stdout}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	// cobra reports unknown subcommands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") && GetExitCode(err) == ExitError {
		err = WithExitCode(ExitUsage, err)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "triage",
		Short: "Group, anonymize and classify exported chat threads",
		Long: `triage turns a Teams chat export into anonymized threads and,
optionally, asks a completion model to classify each thread as an incident.

  triage anonymize --input export.json --output threads.json
  triage classify  --input threads.json --output incidents.json`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default triage.yaml if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: auto, console or json")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return UsageError("%v", err)
	})

	root.AddCommand(
		newAnonymizeCmd(a),
		newClassifyCmd(a),
		newWatchCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads .env and the config file, then builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if skipsConfig(cmd) {
		return a.buildLogger()
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	path := a.configPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path, !explicit, os.Getenv)
	if errors.Is(err, os.ErrNotExist) {
		return fileError("config", path, err)
	}
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := a.buildLogger(); err != nil {
		return err
	}
	a.logger.Debug("configuration resolved", zap.String("path", path))
	return nil
}

func (a *app) buildLogger() error {
	format := a.cfg.Logging.Format
	if a.logFormat != "" {
		format = a.logFormat
	}
	logger, err := logx.New(logx.Options{
		Level:   a.cfg.Logging.Level,
		Verbose: a.verbose,
		Format:  format,
	})
	if err != nil {
		return UsageError("%v", err)
	}
	a.logger = logger
	return nil
}

func skipsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "init", "version":
		return true
	}
	return false
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return UsageError("%s takes no arguments, got %q", cmd.CommandPath(), args)
	}
	return nil
}
