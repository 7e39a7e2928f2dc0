package commands

import (
	"github.com/agentsync-dev/agentsync/pkg/checksum"
	"github.com/agentsync-dev/agentsync/pkg/ledger"
	"github.com/agentsync-dev/agentsync/pkg/ui"
)

// Status classifies every ledger entry against the live filesystem.
func (e *Env) Status() ([]ui.StatusRow, error) {
	led, err := ledger.Load(e.FS, e.Paths.LedgerPath())
	if err != nil {
		return nil, err
	}

	var rows []ui.StatusRow
	for _, path := range led.Paths() {
		entry, _ := led.Get(path)
		live, exists := e.liveChecksum(path)
		rows = append(rows, ui.StatusRow{
			Path:           path,
			Classification: ledger.Classify(&entry, live, exists),
			Version:        entry.InstalledVersion,
		})
	}
	return rows, nil
}

func (e *Env) liveChecksum(path string) (string, bool) {
	info, err := e.FS.Stat(path)
	if err != nil {
		return checksum.Unknown, false
	}
	if info.IsDir() {
		return checksum.Unknown, true
	}
	content, err := e.FS.ReadFile(path)
	if err != nil {
		return checksum.Unknown, true
	}
	return checksum.Of(content), true
}
