package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde-labs/jactl/internal/jdebug"
	"github.com/cwbudde-labs/jactl/internal/jlex"
)

var showPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenise a Jactl file or expression and print the resulting tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	lex := jlex.New(filename, input)
	cursor := jlex.NewCursor(lex)
	for !cursor.AtEOF() {
		cursor.Advance()
	}

	fmt.Println(jdebug.DumpTokens(cursor.First()))

	if errs := cursor.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Println(e.Format(false))
		}
		return fmt.Errorf("found %d lexical error(s)", len(errs))
	}
	return nil
}
