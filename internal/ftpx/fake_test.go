package ftpx

import (
	"errors"
	"io"
	"testing"
)

// fakeConn is an in-memory Conn for exercising the listers, the walker and
// the fetcher without a network.
type fakeConn struct {
	mlst bool // advertise the MLST feature

	dirs  map[string][]Fact   // rich listing per path
	names map[string][]string // bare name listing per path
	files map[string][]byte   // file content per path

	mllistErr   map[string]error
	namelistErr map[string]error

	// retrievePartial, when set for a path, writes half the content and
	// then fails — a mid-transfer fault.
	retrievePartial map[string]bool

	cwd         string
	quitErr     error
	quitCalls   int
	mllistCalls int
}

func newFakeConn(mlst bool) *fakeConn {
	return &fakeConn{
		mlst:            mlst,
		dirs:            map[string][]Fact{},
		names:           map[string][]string{},
		files:           map[string][]byte{},
		mllistErr:       map[string]error{},
		namelistErr:     map[string]error{},
		retrievePartial: map[string]bool{},
		cwd:             "/",
	}
}

func (f *fakeConn) isDir(p string) bool {
	if _, ok := f.dirs[p]; ok {
		return true
	}
	if _, ok := f.names[p]; ok {
		return true
	}
	return p == "/"
}

func (f *fakeConn) ChangeDir(p string) error {
	if !f.isDir(p) {
		return errors.New("550 not a directory")
	}
	f.cwd = p
	return nil
}

func (f *fakeConn) CurrentDir() (string, error) { return f.cwd, nil }

func (f *fakeConn) HasFeature(name string) bool { return f.mlst && name == "MLST" }

func (f *fakeConn) Quit() error {
	f.quitCalls++
	return f.quitErr
}

func (f *fakeConn) MLList(p string) ([]Fact, error) {
	f.mllistCalls++
	if !f.mlst {
		return nil, errors.New("502 command not implemented")
	}
	if err := f.mllistErr[p]; err != nil {
		return nil, err
	}
	facts, ok := f.dirs[p]
	if !ok {
		return nil, errors.New("550 no such directory")
	}
	return facts, nil
}

func (f *fakeConn) NameList(p string) ([]string, error) {
	if err := f.namelistErr[p]; err != nil {
		return nil, err
	}
	if names, ok := f.names[p]; ok {
		return names, nil
	}
	return nil, errors.New("550 no such directory")
}

func (f *fakeConn) Retrieve(p string, w io.Writer) error {
	content, ok := f.files[p]
	if !ok {
		return errors.New("550 no such file")
	}
	if f.retrievePartial[p] {
		if _, err := w.Write(content[:len(content)/2]); err != nil {
			return err
		}
		return errors.New("426 connection closed; transfer aborted")
	}
	_, err := w.Write(content)
	return err
}

func newTestSession(t *testing.T, conn Conn, encoding string) *Session {
	t.Helper()
	codec, err := NewCodec(encoding)
	if err != nil {
		t.Fatalf("NewCodec(%q): %v", encoding, err)
	}
	return NewSession(conn, codec, "testhost")
}
