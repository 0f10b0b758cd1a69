package cmd

import (
	"fmt"
	"time"

	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/songquanpeng/ai-probe/common/logger"
	"github.com/songquanpeng/ai-probe/config"
	"github.com/songquanpeng/ai-probe/netdiag"
	"github.com/songquanpeng/ai-probe/service"
)

func newDiagnoseCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "diagnose [endpoint...]",
		Short: "Check the network path to endpoints without sending credentials",
		Long: `diagnose walks the network layers to each endpoint: DNS, TCP
connect, TLS handshake, and an unauthenticated HTTPS round trip. Endpoints
come from the arguments, or from the configuration file when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoints := args
			if len(endpoints) == 0 {
				var err error
				endpoints, err = configuredEndpoints(configPath)
				if err != nil {
					return err
				}
			}

			d := netdiag.New()
			for _, endpoint := range endpoints {
				res, err := d.Diagnose(cmd.Context(), endpoint)
				if err != nil {
					logger.Logger.Error("diagnose failed",
						zap.String("endpoint", endpoint), zap.Error(err))
					continue
				}
				printDiagnosis(cmd, res)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ai-probe.yaml", "configuration file")
	return cmd
}

// configuredEndpoints derives one diagnosable URL per enabled service.
func configuredEndpoints(path string) ([]string, error) {
	conf, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	var endpoints []string
	for i := range conf.Services {
		svc := &conf.Services[i]
		if !svc.IsEnabled() {
			continue
		}
		if svc.Endpoint != "" {
			endpoints = append(endpoints, svc.Endpoint)
			continue
		}
		switch svc.Name {
		case service.ServiceSpeech:
			endpoints = append(endpoints, conf.ResolvedCloud.SpeechTTSHost(svc.Region))
		case service.ServiceTranslator:
			endpoints = append(endpoints, conf.ResolvedCloud.TranslatorHost())
		}
	}
	return endpoints, nil
}

func printDiagnosis(cmd *cobra.Command, res netdiag.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Endpoint, res.Host)
	for _, step := range res.Steps {
		mark := "ok"
		if !step.OK {
			mark = "FAIL"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-5s %-4s %8s  %s\n",
			step.Name, mark, step.Elapsed.Round(time.Millisecond), step.Detail)
	}
}
