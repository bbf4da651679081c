package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/mimicgo/mimic/internal/config"
	"github.com/mimicgo/mimic/internal/utils"
)

// Cleaner removes previously generated files from a source tree
type Cleaner struct {
	cfg  *config.Config
	diag *utils.DiagnosticSystem
}

// NewCleaner creates a cleaner for the configured output file name
func NewCleaner(cfg *config.Config, diag *utils.DiagnosticSystem) *Cleaner {
	return &Cleaner{cfg: cfg, diag: diag}
}

// Run deletes every generated file under root. Only files carrying the
// generated header are touched; a hand-written file that happens to share
// the output name is left alone with a warning.
func (c *Cleaner) Run(root string) (*Summary, error) {
	summary := &Summary{}

	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			name := entry.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Name() != c.cfg.OutputFile {
			return nil
		}

		generated, err := isGeneratedFile(path)
		if err != nil {
			return err
		}
		if !generated {
			c.diag.Warn("%s: not a generated file, leaving it alone", path)
			return nil
		}

		if err := os.Remove(path); err != nil {
			return err
		}
		summary.FilesRemoved++
		c.diag.Verbose("removed %s", path)
		return nil
	})
	if err != nil {
		return summary, utils.WrapScanError(root, err)
	}
	return summary, nil
}

func isGeneratedFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == generatedHeader, nil
}
