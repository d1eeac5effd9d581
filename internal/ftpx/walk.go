package ftpx

import (
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/logging"
	"github.com/flakysalt/InkyPi/internal/metrics"
)

type entryKind int

const (
	kindDir entryKind = iota
	kindFile
	kindUnknown // bare name listing, type resolved by probing
)

type walkEntry struct {
	name string
	kind entryKind
}

// EnumerateImages walks the subtree rooted at rootPath depth-first and
// returns every image file path found. It fails only when the root itself
// cannot be listed; deeper failures skip the affected entry or subtree and
// the walk continues with siblings.
//
// Server directory trees are assumed acyclic; a server that reports a cycle
// (for example through symlinked directories) will not terminate the walk.
func (s *Session) EnumerateImages(rootPath string) ([]string, error) {
	if rootPath == "" {
		rootPath = "/"
	}

	entries, err := s.listForWalk(rootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %v", ErrEnumeration, rootPath, s.host, err)
	}

	images := []string{}
	s.walkEntries(rootPath, entries, &images)
	metrics.AddImagesEnumerated(len(images))
	return images, nil
}

func (s *Session) walkEntries(dirPath string, entries []walkEntry, images *[]string) {
	for _, e := range entries {
		full := path.Join(dirPath, e.name)
		switch e.kind {
		case kindDir:
			s.walkInto(full, images)
		case kindFile:
			if IsImagePath(e.name) {
				*images = append(*images, full)
			}
		case kindUnknown:
			isDir, err := s.probeDir(full)
			if err != nil {
				logging.Warn("skipping unprobeable entry during walk",
					zap.String("path", full), zap.Error(err))
				continue
			}
			if isDir {
				s.walkInto(full, images)
			} else if IsImagePath(e.name) {
				*images = append(*images, full)
			}
		}
	}
}

// walkInto descends into one subdirectory. An unreadable subdirectory is
// logged and skipped; it never aborts the enclosing walk.
func (s *Session) walkInto(dirPath string, images *[]string) {
	entries, err := s.listForWalk(dirPath)
	if err != nil {
		logging.Warn("skipping unreadable directory during walk",
			zap.String("host", s.host), zap.String("path", dirPath), zap.Error(err))
		return
	}
	s.walkEntries(dirPath, entries, images)
}

// listForWalk reads one directory for the walker. It prefers the rich
// listing when the session has it and falls back to bare names with unknown
// types otherwise. When the bare name listing itself fails the directory is
// abandoned wholesale; no retry with a different encoding is attempted.
func (s *Session) listForWalk(dirPath string) ([]walkEntry, error) {
	wirePath, err := s.codec.Encode(dirPath)
	if err != nil {
		return nil, err
	}

	if _, rich := s.lister.(*richLister); rich {
		facts, err := s.conn.MLList(wirePath)
		if err == nil {
			metrics.IncListing("rich")
			return s.factsToEntries(dirPath, facts), nil
		}
		logging.Warn("rich listing failed during walk, falling back to name list",
			zap.String("path", dirPath), zap.Error(err))
	}

	names, err := s.conn.NameList(wirePath)
	if err != nil {
		return nil, err
	}
	metrics.IncListing("probe")

	entries := make([]walkEntry, 0, len(names))
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
		entries = append(entries, walkEntry{name: name, kind: kindUnknown})
	}
	return entries, nil
}

func (s *Session) factsToEntries(dirPath string, facts []Fact) []walkEntry {
	entries := make([]walkEntry, 0, len(facts))
	for _, f := range facts {
		if f.Type == "cdir" || f.Type == "pdir" {
			continue
		}
		name, err := s.codec.Decode(f.Name)
		if err != nil {
			logging.Warn("skipping entry with undecodable name",
				zap.String("path", dirPath), zap.Error(err))
			continue
		}
		if name == "." || name == ".." {
			continue
		}
		switch f.Type {
		case "dir":
			entries = append(entries, walkEntry{name: name, kind: kindDir})
		case "file":
			entries = append(entries, walkEntry{name: name, kind: kindFile})
		case "":
			entries = append(entries, walkEntry{name: name, kind: kindUnknown})
		}
	}
	return entries
}
