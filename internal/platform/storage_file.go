package platform

import (
	"fmt"
	"io"
	"os"

	"github.com/fenwick-systems/pocketgb/gb"
)

// FileStorage implements gb.PersistentStorage directly over the OS
// filesystem: Open(StorageRead, path) opens an existing file read-only,
// Open(StorageWrite, path) creates/truncates it. No pack library covers
// a plain filesystem adapter, so this stays stdlib os/io only.
type FileStorage struct{}

func (FileStorage) Open(mode gb.StorageMode, path string) (io.ReadWriteCloser, error) {
	switch mode {
	case gb.StorageRead:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("pocketgb: open %q for read: %w", path, err)
		}
		return f, nil
	case gb.StorageWrite:
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("pocketgb: open %q for write: %w", path, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("pocketgb: unknown storage mode %d", mode)
	}
}
