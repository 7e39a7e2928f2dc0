package source

import (
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/logging"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// DirInstaller mirrors skill directories into their targets. It implements
// types.DirectoryInstaller; the target is replaced wholesale on every
// install so stale files from an earlier version never linger.
type DirInstaller struct {
	FS     types.FS
	Logger zerolog.Logger
}

// NewDirInstaller returns an installer over the given filesystem.
func NewDirInstaller(filesystem types.FS) *DirInstaller {
	return &DirInstaller{FS: filesystem, Logger: logging.GetLogger("dirinstall")}
}

// InstallDir replaces targetDir with an exact copy of sourceDir.
func (d *DirInstaller) InstallDir(key types.InstallKey, sourceDir, targetDir string) error {
	if err := d.FS.RemoveAll(targetDir); err != nil {
		return errors.Wrapf(err, errors.ErrActionExecute, "failed to clear %s", targetDir)
	}
	if err := d.copyTree(sourceDir, targetDir); err != nil {
		return err
	}
	d.Logger.Debug().Stringer("key", key).Str("target", targetDir).Msg("installed directory item")
	return nil
}

// RemoveDir deletes the installed directory tree.
func (d *DirInstaller) RemoveDir(key types.InstallKey, targetDir string) error {
	if err := d.FS.RemoveAll(targetDir); err != nil {
		return errors.Wrapf(err, errors.ErrActionExecute, "failed to remove %s", targetDir)
	}
	d.Logger.Debug().Stringer("key", key).Str("target", targetDir).Msg("removed directory item")
	return nil
}

func (d *DirInstaller) copyTree(sourceDir, targetDir string) error {
	if err := d.FS.MkdirAll(targetDir, fs.FileMode(0755)); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", targetDir)
	}
	entries, err := d.FS.ReadDir(sourceDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", sourceDir)
	}
	for _, entry := range entries {
		src := filepath.Join(sourceDir, entry.Name())
		dst := filepath.Join(targetDir, entry.Name())
		if entry.IsDir() {
			if err := d.copyTree(src, dst); err != nil {
				return err
			}
			continue
		}
		content, err := d.FS.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src)
		}
		if err := d.FS.WriteFile(dst, content, fs.FileMode(0644)); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dst)
		}
	}
	return nil
}
