package interp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/go-oberon/internal/lexer"
	"github.com/cwbudde/go-oberon/internal/parser"
	"github.com/cwbudde/go-oberon/internal/semantic"
	"github.com/gkampitakis/go-snaps/snaps"
)

func TestMain(m *testing.M) {
	code := m.Run()
	snaps.Clean(m)
	os.Exit(code)
}

// TestProgramFixtures runs every program under testdata/fixtures through
// the full pipeline and snapshots the evaluator output.
func TestProgramFixtures(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "testdata", "fixtures", "*.ob"))
	if err != nil {
		t.Fatalf("globbing fixtures: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no fixtures found")
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".ob")
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("reading fixture: %v", err)
			}

			p := parser.New(lexer.New(string(source)))
			program := p.ParseProgram()
			if errs := p.Errors(); len(errs) > 0 {
				t.Fatalf("parser error: %v", errs[0])
			}
			if lexErr := p.LexError(); lexErr != nil {
				t.Fatalf("lexer error: %v", lexErr)
			}
			analyzer := semantic.NewAnalyzer()
			if diags := analyzer.Analyze(program); len(diags) > 0 {
				t.Fatalf("semantic error: %v", diags[0])
			}

			var out bytes.Buffer
			if err := New(&out).Run(program, analyzer.Procedures()); err != nil {
				t.Fatalf("runtime error: %v", err)
			}
			snaps.MatchSnapshot(t, out.String())
		})
	}
}
