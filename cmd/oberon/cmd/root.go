package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-oberon/internal/driver"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	interpret   bool
	compileOnly bool
	emitC       bool
	execute     bool
	output      string
	launchGUI   bool
)

var rootCmd = &cobra.Command{
	Use:   "oberon [file]",
	Short: "Oberon compiler and interpreter",
	Long: `go-oberon is a compiler for a small imperative language in the Wirth
tradition: one module per compilation unit, typed variables and constants,
nested procedures, control flow, arrays and strings.

By default the module is lowered to a textual LLVM-style IR and handed to
clang; when the toolchain is unavailable the built-in tree-walking
evaluator runs the program instead.

Examples:
  # Compile hello.ob and build a native executable
  oberon hello.ob

  # Run with the built-in evaluator
  oberon --interpret hello.ob

  # Emit the IR only
  oberon -c hello.ob

  # Emit C source instead of IR
  oberon -c --emit-c hello.ob`,
	Version:       Version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          compileRoot,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().BoolVar(&interpret, "interpret", false, "run the evaluator instead of building")
	rootCmd.Flags().BoolVarP(&compileOnly, "compile", "c", false, "emit the intermediate artifact only")
	rootCmd.Flags().BoolVar(&emitC, "emit-c", false, "emit C source instead of LLVM IR")
	rootCmd.Flags().BoolVar(&execute, "run", false, "execute the built binary (10s ceiling); without -o it is built in a temp dir that is removed afterwards")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "rename the produced executable")
	rootCmd.Flags().BoolVarP(&launchGUI, "gui", "g", false, "launch the editor UI")
}

func compileRoot(cmd *cobra.Command, args []string) error {
	if launchGUI {
		return fmt.Errorf("the editor UI is not bundled with this build")
	}
	if len(args) != 1 {
		return cmd.Help()
	}
	return driver.CompileFile(args[0], driver.Options{
		Interpret:   interpret,
		CompileOnly: compileOnly,
		EmitC:       emitC,
		Execute:     execute,
		Output:      output,
	})
}
