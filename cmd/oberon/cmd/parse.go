package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-oberon/internal/lexer"
	"github.com/cwbudde/go-oberon/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse an Oberon file and print the AST",
	Long: `Parse an Oberon program and print the tree in its printed source
form. The printed form re-parses to a structurally identical tree, which
makes this command useful both for debugging the parser and as a crude
formatter.`,
	Args: cobra.ExactArgs(1),
	RunE: parseFile,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parseFile(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	p := parser.New(lexer.New(string(content)))
	program := p.ParseProgram()
	if lexErr := p.LexError(); lexErr != nil {
		return fmt.Errorf("lexing failed: %s", lexErr.Error())
	}
	if errs := p.Errors(); len(errs) > 0 {
		return fmt.Errorf("parsing failed: %s", errs[0].Error())
	}

	fmt.Print(program.String())
	return nil
}
