package export

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// countingWriter tracks bytes handed to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeAtomic runs write against a temporary file next to dest and renames
// it over dest once everything has been flushed and synced. On any error
// the temporary file is removed and dest is left as it was.
//
// The temporary file is created with mode 0666 so the process umask
// applies as it would for os.Create. An existing dest keeps its permissions.
func writeAtomic(dest string, write func(io.Writer) error) (size int64, err error) {
	name := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-"+uuid.NewString())
	tmp, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666) //nolint:gosec // export destinations are user-chosen
	if err != nil {
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := &countingWriter{w: tmp}
	bw := bufio.NewWriter(cw)
	if err := write(bw); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if fi, err := os.Stat(dest); err == nil {
		if err := os.Chmod(tmp.Name(), fi.Mode().Perm()); err != nil {
			return 0, err
		}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, err
	}
	committed = true
	return cw.n, nil
}
