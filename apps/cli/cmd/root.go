package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

// Execute runs the CLI and exits with the code matching the outcome.
func Execute(version, buildTime string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := Run(ctx, newApp(version, buildTime), os.Args[1:])
	stop()
	os.Exit(code)
}

// Run executes args against a fresh command tree and returns the exit code.
func Run(ctx context.Context, a *app, args []string) int {
	root := NewRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if !errors.Is(err, errSilent) {
		a.console.Error(err)
	}
	return exitCode(err)
}

// NewRootCmd builds the apix command tree around a.
func NewRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "apix",
		Short: "Manifest-driven HTTP requests from the terminal",
		Long: heredoc.Doc(`
			apix sends HTTP requests described by YAML manifests.

			A Request manifest declares parameters, a local context and a request
			template. Templates use {{ }} expressions over the manifest, its
			parameters, the environment and the rendered context.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", getEnvBool("APIX_VERBOSE", false), "Print the request and response heads (env: APIX_VERBOSE)")
	flags.StringVarP(&a.outputFile, "output-file", "o", "", "Write the response body to a file")
	flags.BoolVar(&a.noColor, "no-color", getEnvBool("APIX_NO_COLOR", false), "Disable colored output (env: APIX_NO_COLOR)")
	flags.StringArrayVar(&a.envFiles, "env-file", nil, "Load variables from a .env file (default: ./.env when present)")
	flags.BoolVar(&a.noHistory, "no-history", false, "Do not record executed requests")

	root.AddCommand(
		newExecCmd(a),
		newConfigCmd(a),
		newCtlCmd(a),
		newHistoryCmd(a),
		newInitCmd(a),
		newCompletionCmd(a),
		newVersionCmd(a),
	)
	for _, method := range requestMethods {
		root.AddCommand(newRequestCmd(a, method))
	}
	return root
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
