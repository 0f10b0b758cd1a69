package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	cfg "github.com/songquanpeng/ai-probe/common/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ai-probe %s (%s, %s/%s)\n",
				cfg.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
