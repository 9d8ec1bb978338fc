package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oy3o/smartbuf"
)

var _ smartbuf.Sink = (*Dir)(nil)

// Dir writes images as files below a root directory. Each Put goes to a
// temporary file that is renamed into place, so readers never observe a
// partially written image.
type Dir struct {
	root string
	perm os.FileMode
	cfg  config
}

// NewDir creates a sink rooted at root. The directory is created on first Put.
func NewDir(root string, opts ...Option) *Dir {
	return &Dir{root: root, perm: 0o644, cfg: newConfig(opts)}
}

// Root returns the directory images are written to.
func (d *Dir) Root() string { return d.root }

// Path returns the file path Put uses for name.
func (d *Dir) Path(name string) (string, error) {
	key, err := objectKey("", name)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}

func (d *Dir) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := d.Path(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sink: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("sink: create temp for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("sink: write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sink: sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sink: close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), d.perm); err != nil {
		return fmt.Errorf("sink: chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("sink: rename %s: %w", name, err)
	}

	d.cfg.logger.Debug("sink: wrote image", "path", dst, "size", len(data))
	return nil
}

// Get reads back the image stored under name.
func (d *Dir) Get(name string) ([]byte, error) {
	p, err := d.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}
