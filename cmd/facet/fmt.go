// The fmt subcommand re-prints notation files canonically.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/pkg/edn"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt [file...]",
	Short: "Re-print notation files in canonical form",
	Long: `Fmt parses each file (or standard input) and prints every top-level
value back in canonical form: one value per line, entries in their
original order, unknown tagged literals preserved verbatim.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "rewrite files in place instead of printing to stdout")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	write := fmtWrite || cfg.GetBool(cfgKeyWrite)

	if len(args) == 0 {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		out, err := reprint(string(src))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		out, err := reprint(string(src))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if write {
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			continue
		}
		fmt.Print(out)
	}
	return nil
}

// reprint parses every top-level value in src and prints it back, one
// value per line. Unknown tags round-trip as-is.
func reprint(src string) (string, error) {
	values, err := edn.ParseAll(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, v := range values {
		s, err := edn.Print(v)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
