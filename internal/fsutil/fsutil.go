// Package fsutil wraps the file-I/O concern every document loader in this
// module shares (state-machine definitions, mock configs, test-case
// suites, ad-hoc input files), grounded on the teacher's ConfigFileSystem
// (internal/filesystem/config_fs.go), which wraps afero.Fs the same way:
// an OS-backed default, swappable for afero.NewMemMapFs() so callers can
// exercise the loaders against an in-memory filesystem instead of disk.
package fsutil

import "github.com/spf13/afero"

// FS is the shared filesystem every loader reads through.
var FS afero.Fs = afero.NewOsFs()

// SetFS overrides the shared filesystem, e.g. with afero.NewMemMapFs() in
// tests that want to avoid touching disk.
func SetFS(fs afero.Fs) { FS = fs }

// UseOsFS restores the default OS-backed filesystem.
func UseOsFS() { FS = afero.NewOsFs() }

// ReadFile reads path through the shared filesystem.
func ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(FS, path)
}
