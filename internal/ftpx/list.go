package ftpx

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/logging"
	"github.com/flakysalt/InkyPi/internal/metrics"
)

// imageExtensions are the file extensions served to the display.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".gif": true,
}

// IsImagePath reports whether name has a recognized image extension.
func IsImagePath(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// Entry is one directory child. Path is slash-normalized and relative to
// the server root. Size is -1 when the server did not report one.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Listing is the result of listing one directory: child directories and
// image files, each sorted case-insensitively by name. Non-image files are
// dropped; they are out of scope for display.
type Listing struct {
	Path        string  `json:"current_path"`
	ParentPath  string  `json:"parent_path"`
	Directories []Entry `json:"directories"`
	Files       []Entry `json:"files"`
}

// lister is the protocol strategy for reading one directory. The rich
// variant needs MLSD; the probe variant works on any server at the cost of
// one round-trip per entry.
type lister interface {
	list(s *Session, dirPath string) (dirs, files []Entry, err error)
}

// List returns the immediate children of dirPath. A rich listing rejected
// mid-session downgrades to the probe lister, but only once the probe has
// proven the directory is actually readable.
func (s *Session) List(dirPath string) (*Listing, error) {
	if dirPath == "" {
		dirPath = "/"
	}

	dirs, files, err := s.lister.list(s, dirPath)
	if err != nil {
		if _, rich := s.lister.(*richLister); rich {
			probe := &probeLister{}
			if pd, pf, perr := probe.list(s, dirPath); perr == nil {
				logging.Warn("rich listing rejected, downgrading to name probing",
					zap.String("host", s.host), zap.String("path", dirPath), zap.Error(err))
				s.lister = probe
				dirs, files, err = pd, pf, nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %v", ErrListing, dirPath, s.host, err)
	}

	// Empty-but-present arrays on the wire, never null.
	if dirs == nil {
		dirs = []Entry{}
	}
	if files == nil {
		files = []Entry{}
	}
	sortEntries(dirs)
	sortEntries(files)

	return &Listing{
		Path:        dirPath,
		ParentPath:  parentPath(dirPath),
		Directories: dirs,
		Files:       files,
	}, nil
}

// richLister uses MLSD facts: one round-trip, server-reported types and sizes.
type richLister struct{}

func (richLister) list(s *Session, dirPath string) (dirs, files []Entry, err error) {
	wirePath, err := s.codec.Encode(dirPath)
	if err != nil {
		return nil, nil, err
	}
	facts, err := s.conn.MLList(wirePath)
	if err != nil {
		return nil, nil, err
	}
	metrics.IncListing("rich")

	for _, f := range facts {
		if f.Type == "cdir" || f.Type == "pdir" {
			continue
		}
		name, derr := s.codec.Decode(f.Name)
		if derr != nil {
			logging.Warn("skipping entry with undecodable name",
				zap.String("path", dirPath), zap.Error(derr))
			continue
		}
		if name == "." || name == ".." {
			continue
		}
		switch f.Type {
		case "dir":
			dirs = append(dirs, Entry{Name: name, Path: path.Join(dirPath, name), Size: -1})
		case "file":
			if IsImagePath(name) {
				files = append(files, Entry{Name: name, Path: path.Join(dirPath, name), Size: f.Size})
			}
		}
	}
	return dirs, files, nil
}

// probeLister uses NLST names and classifies each entry by attempting to
// change into it. O(entries) extra round-trips; only legacy servers hit it.
type probeLister struct{}

func (probeLister) list(s *Session, dirPath string) (dirs, files []Entry, err error) {
	wirePath, err := s.codec.Encode(dirPath)
	if err != nil {
		return nil, nil, err
	}
	names, err := s.conn.NameList(wirePath)
	if err != nil {
		return nil, nil, err
	}
	metrics.IncListing("probe")

	for _, raw := range names {
		name, derr := s.codec.Decode(raw)
		if derr != nil {
			logging.Warn("skipping entry with undecodable name",
				zap.String("path", dirPath), zap.Error(derr))
			continue
		}
		name = baseName(name)
		if name == "." || name == ".." || name == "" {
			continue
		}
		full := path.Join(dirPath, name)
		isDir, perr := s.probeDir(full)
		if perr != nil {
			logging.Warn("skipping unprobeable entry",
				zap.String("path", full), zap.Error(perr))
			continue
		}
		if isDir {
			dirs = append(dirs, Entry{Name: name, Path: full, Size: -1})
		} else if IsImagePath(name) {
			files = append(files, Entry{Name: name, Path: full, Size: -1})
		}
	}
	return dirs, files, nil
}

// probeDir classifies a path by attempting CWD into it, restoring the
// working directory afterwards so callers are unaffected. A failed CWD
// means "not a directory"; only encoding problems are real errors.
func (s *Session) probeDir(fullPath string) (bool, error) {
	wire, err := s.codec.Encode(fullPath)
	if err != nil {
		return false, err
	}

	saved, err := s.conn.CurrentDir()
	if err != nil {
		saved = "/"
	}
	if err := s.conn.ChangeDir(wire); err != nil {
		return false, nil
	}
	if err := s.conn.ChangeDir(saved); err != nil {
		logging.Warn("restoring working directory after probe",
			zap.String("host", s.host), zap.String("dir", saved), zap.Error(err))
	}
	return true, nil
}

// baseName strips any directory prefix some servers include in NLST output.
func baseName(name string) string {
	name = strings.TrimSuffix(name, "/")
	if strings.Contains(name, "/") {
		return path.Base(name)
	}
	return name
}

func parentPath(p string) string {
	if p == "/" {
		return "/"
	}
	return path.Dir(strings.TrimSuffix(p, "/"))
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}
