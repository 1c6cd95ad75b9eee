package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-oberon/internal/lexer"
	"github.com/spf13/cobra"
)

var showPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an Oberon file",
	Long: `Tokenize (lex) an Oberon program and print the resulting tokens.

This command is useful for debugging the lexer and understanding how
source code is tokenized.

Examples:
  # Tokenize a source file
  oberon lex hello.ob

  # Show token positions
  oberon lex --show-pos hello.ob`,
	Args: cobra.ExactArgs(1),
	RunE: lexFile,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func lexFile(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	l := lexer.New(string(content))
	tokens, lexErr := l.Tokenize()
	for _, tok := range tokens {
		if showPos {
			fmt.Printf("%d:%d\t%s\t%q\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Literal)
		} else {
			fmt.Printf("%s\t%q\n", tok.Type, tok.Literal)
		}
	}
	if lexErr != nil {
		return fmt.Errorf("lexing failed: %s", lexErr.Message)
	}
	return nil
}
