package shell

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const cacheFileName = ".prompt-cache"

// PromptCache is one owner's cached prompt status.
type PromptCache struct {
	Logged         bool      `json:"logged"`
	Streak         int       `json:"streak"`
	Items          int       `json:"items"`
	TodayDate      string    `json:"today_date"`
	Owner          string    `json:"owner,omitempty"`
	StorageBackend string    `json:"storage_backend"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// cacheFile holds every owner's entry; several owners can share a data dir.
type cacheFile struct {
	Entries map[string]PromptCache `json:"entries"`
}

// CachePath returns the full path to the prompt cache file.
func CachePath(dataDir string) string {
	return filepath.Join(dataDir, cacheFileName)
}

// load reports false when the file is missing or unreadable.
func load(dataDir string) (cacheFile, bool) {
	data, err := os.ReadFile(CachePath(dataDir))
	if err != nil {
		return cacheFile{}, false
	}
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil || f.Entries == nil {
		return cacheFile{}, false
	}
	return f, true
}

func save(dataDir string, f cacheFile) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dataDir, cacheFileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), CachePath(dataDir))
}

// ReadCache returns owner's cached status, or nil when there is none.
func ReadCache(dataDir, owner string) *PromptCache {
	f, ok := load(dataDir)
	if !ok {
		return nil
	}
	c, ok := f.Entries[owner]
	if !ok {
		return nil
	}
	return &c
}

// WriteCache stores c under c.Owner and leaves other owners untouched.
func WriteCache(dataDir string, c *PromptCache) error {
	f, ok := load(dataDir)
	if !ok {
		f = cacheFile{Entries: make(map[string]PromptCache)}
	}
	f.Entries[c.Owner] = *c
	return save(dataDir, f)
}

// IsFresh reports whether the entry was computed for today less than ttl
// before now.
func (c *PromptCache) IsFresh(now time.Time, ttl time.Duration, today string) bool {
	if c == nil || c.TodayDate != today {
		return false
	}
	age := now.Sub(c.UpdatedAt)
	return age >= 0 && age <= ttl
}

// InvalidateCache drops owner's entry. A file left with no entries, or one
// that cannot be parsed, is removed.
func InvalidateCache(dataDir, owner string) error {
	f, ok := load(dataDir)
	if ok {
		delete(f.Entries, owner)
	}
	if !ok || len(f.Entries) == 0 {
		if err := os.Remove(CachePath(dataDir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return save(dataDir, f)
}
