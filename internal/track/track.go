// Package track persists which bookmarks ryu is responsible for, and
// the forge pull requests it has associated with them, as TOML files
// under the jj repo's data directory.
package track

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"go.ryu.dev/ryu/internal/osutil"
)

// Record is one tracked bookmark.
type Record struct {
	Bookmark string `toml:"bookmark"`

	// ChangeID is the jj change id the bookmark pointed at the last
	// time this record was written. Unlike Bookmark, it survives a
	// `jj bookmark rename`, which is what lets Reconcile notice a
	// rename instead of treating it as "untracked, then a new
	// bookmark appeared".
	ChangeID string `toml:"change_id,omitempty"`

	// PRNumber is the forge-native number of the PR last known to be
	// associated with this bookmark, or 0 if none has been created yet.
	PRNumber int `toml:"pr_number,omitempty"`

	// Forge identifies which forge PRNumber belongs to (e.g. "github",
	// "gitlab"), empty if PRNumber is 0.
	Forge string `toml:"forge,omitempty"`
}

type trackedFile struct {
	Bookmarks []Record `toml:"bookmark"`
}

// Store reads and writes tracked.toml and pr_cache.toml under dir
// (conventionally "<workspace>/.jj/repo/ryu").
type Store struct {
	dir string
}

// Open builds a Store rooted at dir. dir is created on first write if
// it does not already exist.
func Open(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) trackedPath() string { return filepath.Join(s.dir, "tracked.toml") }
func (s *Store) cachePath() string   { return filepath.Join(s.dir, "pr_cache.toml") }

// Load reads the tracked bookmark set. A missing file is treated as an
// empty set, not an error.
func (s *Store) Load() ([]Record, error) {
	var f trackedFile
	if err := readTOML(s.trackedPath(), &f); err != nil {
		return nil, fmt.Errorf("load tracked bookmarks: %w", err)
	}
	sort.Slice(f.Bookmarks, func(i, j int) bool { return f.Bookmarks[i].Bookmark < f.Bookmarks[j].Bookmark })
	return f.Bookmarks, nil
}

// Save atomically overwrites tracked.toml with records.
func (s *Store) Save(records []Record) error {
	sorted := append([]Record(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bookmark < sorted[j].Bookmark })
	return writeTOML(s.dir, s.trackedPath(), trackedFile{Bookmarks: sorted})
}

// Add inserts or updates a single tracked bookmark.
func (s *Store) Add(rec Record) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	found := false
	for i, r := range records {
		if r.Bookmark == rec.Bookmark {
			records[i] = rec
			found = true
			break
		}
	}
	if !found {
		records = append(records, rec)
	}
	return s.Save(records)
}

// Remove deletes a bookmark from the tracked set. It is a no-op if the
// bookmark was not tracked.
func (s *Store) Remove(bookmark string) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	out := records[:0]
	for _, r := range records {
		if r.Bookmark != bookmark {
			out = append(out, r)
		}
	}
	return s.Save(out)
}

// PRCacheEntry is one cached forge lookup result, keyed by bookmark
// name, used to avoid re-querying the forge for PRs ryu already knows
// about within a single run and across runs until invalidated.
type PRCacheEntry struct {
	Bookmark string `toml:"bookmark"`
	Forge    string `toml:"forge"`
	Number   int    `toml:"number"`
	URL      string `toml:"url"`
	Base     string `toml:"base"`
	HeadSHA  string `toml:"head_sha"`
	Draft    bool   `toml:"draft,omitempty"`
}

type cacheFile struct {
	Entries []PRCacheEntry `toml:"pr"`
}

// BookmarkToPrMap maps bookmark name to its cached PR entry.
type BookmarkToPrMap map[string]PRCacheEntry

// LoadCache reads pr_cache.toml into a lookup map. A missing file is
// treated as an empty cache.
func (s *Store) LoadCache() (BookmarkToPrMap, error) {
	var f cacheFile
	if err := readTOML(s.cachePath(), &f); err != nil {
		return nil, fmt.Errorf("load PR cache: %w", err)
	}
	m := make(BookmarkToPrMap, len(f.Entries))
	for _, e := range f.Entries {
		m[e.Bookmark] = e
	}
	return m, nil
}

// SaveCache atomically overwrites pr_cache.toml with m.
func (s *Store) SaveCache(m BookmarkToPrMap) error {
	entries := make([]PRCacheEntry, 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Bookmark < entries[j].Bookmark })
	return writeTOML(s.dir, s.cachePath(), cacheFile{Entries: entries})
}

func readTOML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, v)
}

// writeTOML marshals v and writes it to path atomically: it writes to
// a temp file in dir and renames over path, so a crash or concurrent
// reader never observes a partially-written file.
func writeTOML(dir, path string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp, err := osutil.TempFilePath(dir, "ryu-*.toml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
