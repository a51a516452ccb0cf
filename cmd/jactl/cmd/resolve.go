package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde-labs/jactl/internal/jdebug"
	"github.com/cwbudde-labs/jactl/pkg/jactl"
)

var (
	assumeAsync bool
	replMode    bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Resolve a Jactl file and print the typed, async-annotated AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&assumeAsync, "assume-async", false, "treat every function as async (testing hook, spec S-series scenario)")
	resolveCmd.Flags().BoolVar(&replMode, "repl", false, "resolve in REPL mode (top-level vars bind into an external globals map)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	unit := jactl.Compile(input,
		jactl.WithFile(filename),
		jactl.WithReplMode(replMode),
		jactl.WithAssumeEveryCallAsync(assumeAsync),
	)

	fmt.Println(jdebug.DumpFunc(unit.Main))
	fmt.Println(jdebug.DumpAsyncTable(unit.AsyncFuncs))

	if unit.HasErrors() {
		fmt.Println(unit.Diagnostics.Format(false))
		return fmt.Errorf("found %d compile error(s)", len(unit.Diagnostics.Errors))
	}
	return nil
}
