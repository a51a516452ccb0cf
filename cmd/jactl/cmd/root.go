// Package cmd implements the jactl CLI collaborator: a thin cobra wrapper
// around pkg/jactl that exposes the compiler pipeline for scripting and
// debugging (spec §6). Executing compiled scripts is out of scope (the
// back-end/runtime are external collaborators) — commands here stop at
// reporting the resolved, async-annotated AST or compile diagnostics.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jactl",
	Short: "Jactl front-end: tokenise, parse, resolve and analyse scripts",
	Long: `jactl drives the Jactl compiler front/middle-end: tokeniser, parser,
type-resolver and async-propagation analyser.

It does not execute scripts — code generation and the suspend/resume
runtime live outside this module.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("eval", "e", "", "compile inline code instead of reading a file")
	rootCmd.PersistentFlags().BoolP("print-loop", "p", false, "wrap script in a line-reading print loop (spec §6 -p)")
	rootCmd.PersistentFlags().BoolP("non-print-loop", "n", false, "wrap script in a line-reading loop without auto-print (spec §6 -n)")
	rootCmd.PersistentFlags().IntP("debug-level", "d", 0, "debug dump verbosity (0=none .. 4=async table)")
	rootCmd.PersistentFlags().Int("min-scale", 10, "minimum Decimal scale used when formatting (spec §4.3)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// readSource resolves a command's source from either the -e inline flag
// or its first positional file argument.
func readSource(cmd *cobra.Command, args []string) (input, filename string, err error) {
	evalExpr, _ := cmd.Flags().GetString("eval")
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
