package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde-labs/jactl/internal/jdebug"
	"github.com/cwbudde-labs/jactl/internal/jparser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Jactl file or expression and print the raw AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	p := jparser.New(filename, input)
	prog := p.ParseProgram()

	fmt.Println(jdebug.DumpAST(prog))

	if diags := p.Diagnostics(); diags.HasErrors() {
		fmt.Println(diags.Format(false))
		return fmt.Errorf("found %d parse error(s)", len(diags.Errors))
	}
	return nil
}
