package report

import (
	"path/filepath"

	"github.com/disiqueira/gotree/v3"
)

// Tree renders the source to thumbnail mapping with sources grouped by
// directory, followed by orphaned entries.
func (s *Status) Tree() string {
	t := newSourceTree(s.SourceDir)
	for _, it := range s.Cached {
		t.insert(it.Source, " -> "+it.Key)
	}
	for _, it := range s.Missing {
		t.insert(it.Source, " (missing)")
	}
	if len(s.Orphaned) > 0 {
		orphans := gotree.New(s.CacheDir + " (orphaned)")
		for _, k := range s.Orphaned {
			orphans.Add(k)
		}
		t.root.AddTree(orphans)
	}
	return t.root.Print()
}

type sourceTree struct {
	base string
	root gotree.Tree
	dirs map[string]gotree.Tree
}

func newSourceTree(base string) sourceTree {
	return sourceTree{base: base, root: gotree.New(base), dirs: make(map[string]gotree.Tree)}
}

func (t sourceTree) dir(rel string) gotree.Tree {
	if rel == "." {
		return t.root
	}
	d := t.dirs[rel]
	if d == nil {
		d = t.dir(filepath.Dir(rel)).Add(filepath.Base(rel))
		t.dirs[rel] = d
	}
	return d
}

func (t sourceTree) insert(source, suffix string) {
	rel, err := filepath.Rel(t.base, source)
	if err != nil {
		rel = filepath.Base(source)
	}
	t.dir(filepath.Dir(rel)).Add(filepath.Base(rel) + suffix)
}
