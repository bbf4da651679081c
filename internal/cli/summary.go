package cli

import (
	"github.com/mimicgo/mimic/internal/utils"
)

// Summary aggregates the counters of one generator or cleaner run
type Summary struct {
	PackagesScanned  int
	FilesWritten     int
	DoublesGenerated int
	FilesRemoved     int
}

// Print reports the run through the diagnostic system
func (s *Summary) Print(diag *utils.DiagnosticSystem, title string) {
	stats := map[string]interface{}{
		"Packages scanned":  s.PackagesScanned,
		"Files written":     s.FilesWritten,
		"Doubles generated": s.DoublesGenerated,
	}
	if s.FilesRemoved > 0 {
		stats["Files removed"] = s.FilesRemoved
	}
	diag.Summary(title, stats)
}
