package ftpx

import (
	"fmt"
	"io"
	"path"

	"github.com/flakysalt/InkyPi/internal/metrics"
	"github.com/flakysalt/InkyPi/internal/scratch"
)

// Fetch streams remotePath into a new scratch file and returns the local
// path. The scratch file carries the remote file's extension (".png" when
// it has none) and is registered with the tracker before the transfer
// starts, so a failure partway through still gets cleaned up.
func (s *Session) Fetch(remotePath string, tracker *scratch.Tracker) (string, error) {
	ext := path.Ext(remotePath)
	if ext == "" {
		ext = ".png"
	}

	f, err := tracker.Create(ext)
	if err != nil {
		return "", fmt.Errorf("%w: create scratch file for %s: %v", ErrFetch, remotePath, err)
	}
	defer f.Close()

	wirePath, err := s.codec.Encode(remotePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, remotePath, err)
	}

	cw := &countingWriter{w: f}
	if err := s.conn.Retrieve(wirePath, cw); err != nil {
		metrics.AddFetchBytes(cw.n)
		return "", fmt.Errorf("%w: %s from %s: %v", ErrFetch, remotePath, s.host, err)
	}
	metrics.AddFetchBytes(cw.n)

	return f.Name(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
