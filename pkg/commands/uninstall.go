package commands

import (
	"os"

	"github.com/agentsync-dev/agentsync/pkg/ledger"
	"github.com/agentsync-dev/agentsync/pkg/reconcile"
	"github.com/agentsync-dev/agentsync/pkg/registry"
	"github.com/agentsync-dev/agentsync/pkg/source"
)

// Uninstall removes installed files, honoring ownership: engine-owned files
// are deleted, user-modified files survive unless forced, and files the user
// already deleted are simply forgotten. The registry and ledger are pruned
// to match and saved afterwards.
func (e *Env) Uninstall() (*reconcile.Result, error) {
	led, err := ledger.Load(e.FS, e.Paths.LedgerPath())
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(e.FS, e.Paths.RegistryPath())
	if err != nil {
		return nil, err
	}

	dirs := source.NewDirInstaller(e.FS)
	result := &reconcile.Result{}

	for _, rec := range reg.Sorted() {
		res := reconcile.ActionResult{
			Key:        rec.Key(),
			Kind:       reconcile.KindDelete,
			TargetPath: rec.TargetPath,
		}

		if rec.Type.DirectoryBased() {
			// whole-tree items: the directory installer owns them entirely
			if err := dirs.RemoveDir(rec.Key(), rec.TargetPath); err != nil {
				res.Status = reconcile.StatusFailed
				res.Message = err.Error()
				result.Actions = append(result.Actions, res)
				result.Failed++
				continue
			}
		} else {
			entry, tracked := led.Get(rec.TargetPath)
			var entryRef *ledger.TrackedFile
			if tracked {
				entryRef = &entry
			}
			live, exists := e.liveChecksum(rec.TargetPath)
			class := ledger.Classify(entryRef, live, exists)

			switch {
			case class == ledger.ClassRemoved:
				// already gone, just forget it
			case ledger.Deletable(class, e.Config.Force):
				if err := e.FS.Remove(rec.TargetPath); err != nil && !os.IsNotExist(err) {
					res.Status = reconcile.StatusFailed
					res.Message = err.Error()
					result.Actions = append(result.Actions, res)
					result.Failed++
					continue
				}
			case class == ledger.ClassUser:
				res.Status = reconcile.StatusSkipped
				res.Message = "path is not tracked by the ledger; kept"
				result.Actions = append(result.Actions, res)
				result.Skipped++
				continue
			default:
				res.Status = reconcile.StatusSkipped
				res.Message = "file was modified; kept (use --force to remove)"
				result.Actions = append(result.Actions, res)
				result.Skipped++
				continue
			}
		}

		led.Forget(rec.TargetPath)
		reg.Remove(rec.Key())
		res.Status = reconcile.StatusSuccess
		result.Actions = append(result.Actions, res)
		result.Deleted++
	}

	if err := registry.Save(e.FS, e.Paths.RegistryPath(), reg); err != nil {
		return nil, err
	}
	if err := ledger.Save(e.FS, e.Paths.LedgerPath(), led); err != nil {
		return nil, err
	}

	e.Logger.Info().Int("deleted", result.Deleted).Int("skipped", result.Skipped).Msg("uninstall finished")
	return result, nil
}
