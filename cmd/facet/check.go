// The check subcommand verifies round-trip stability of notation files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/pkg/edn"
	"github.com/mesh-intelligence/facet/pkg/emap"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Verify that files survive a decode/encode round trip",
	Long: `Check parses each file, prints it back, and parses the printed text
again, verifying the two trees are equal. With --strict the printed
text must also re-print byte-identically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "require byte-identical re-encoding")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	strict := checkStrict || cfg.GetBool(cfgKeyStrict)

	failed := 0
	for _, path := range args {
		if err := checkFile(path, strict); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func checkFile(path string, strict bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	values, err := edn.ParseAll(string(src))
	if err != nil {
		return err
	}
	for i, v := range values {
		printed, err := edn.Print(v)
		if err != nil {
			return fmt.Errorf("value %d: %w", i+1, err)
		}
		back, err := edn.Parse(printed)
		if err != nil {
			return fmt.Errorf("value %d re-parses badly: %w", i+1, err)
		}
		if !emap.ValueEqual(v, back) {
			return fmt.Errorf("value %d changes across a round trip", i+1)
		}
		if strict {
			again, err := edn.Print(back)
			if err != nil {
				return fmt.Errorf("value %d: %w", i+1, err)
			}
			if again != printed {
				return fmt.Errorf("value %d re-prints unstably", i+1)
			}
		}
	}
	return nil
}
