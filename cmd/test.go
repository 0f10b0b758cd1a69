package cmd

import (
	"net/http"
	"os"
	"time"

	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/songquanpeng/ai-probe/auth"
	cfg "github.com/songquanpeng/ai-probe/common/config"
	"github.com/songquanpeng/ai-probe/common/logger"
	"github.com/songquanpeng/ai-probe/config"
	"github.com/songquanpeng/ai-probe/output"
	"github.com/songquanpeng/ai-probe/probe"
)

type runFlags struct {
	configPath string
	format     string
	junitFile  string
	timeout    time.Duration
	parallel   int
}

func newTestCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the configured scenarios and report a verdict",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runProbe(cmd, flags))
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "ai-probe.yaml", "configuration file")
	cmd.Flags().StringVarP(&flags.format, "output", "o", "table", "report format: table or json")
	cmd.Flags().StringVar(&flags.junitFile, "junit-file", "", "also write a JUnit XML report to this path")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "overall run timeout (overrides config)")
	cmd.Flags().IntVar(&flags.parallel, "parallel", 0, "max services probed concurrently (overrides config)")

	return cmd
}

// runProbe executes one full run and returns the process exit code.
func runProbe(cmd *cobra.Command, flags *runFlags) int {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		logger.Logger.Error("configuration rejected", zap.Error(err))
		verdict, code := probe.Aggregate(probe.NewReport(), err)
		logger.Logger.Info("run aborted", zap.String("verdict", string(verdict)))
		return code
	}
	if flags.timeout > 0 {
		conf.Timeout = config.Duration(flags.timeout)
	}
	if flags.parallel > 0 {
		conf.Parallel = flags.parallel
	}

	runner := &probe.Runner{
		Conf:   conf,
		Auth:   auth.NewManager(auth.NewCache(), nil, cmd.ErrOrStderr()),
		Client: &http.Client{Timeout: cfg.RequestTimeout},
		Exec:   probe.NewExecutor(),
	}

	report, runErr := runner.Run(cmd.Context())
	verdict, code := probe.Aggregate(report, runErr)
	if runErr != nil {
		logger.Logger.Error("run failed", zap.Error(runErr))
	}

	switch flags.format {
	case "json":
		if err := output.WriteJSON(cmd.OutOrStdout(), report, verdict); err != nil {
			logger.Logger.Error("write json report", zap.Error(err))
		}
	default:
		output.WriteConsole(cmd.OutOrStdout(), report, verdict)
	}

	if flags.junitFile != "" {
		if err := writeJUnitFile(flags.junitFile, report); err != nil {
			logger.Logger.Error("write junit report", zap.Error(err))
		}
	}

	return code
}

func writeJUnitFile(path string, report *probe.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return output.WriteJUnit(f, report)
}
