package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// renderVersion is bumped whenever a renderer's output changes shape.
// Entries written under another version are treated as misses.
const renderVersion = "3"

// RenderCache stores rendered outputs on disk, one directory per key.
type RenderCache struct {
	dir string
}

// CachedOutput describes a cached render. The rendered bytes live next to
// the metadata file.
type CachedOutput struct {
	Key       string    `json:"key"`
	Format    string    `json:"format"`
	Scale     string    `json:"scale"`
	Kit       string    `json:"kit,omitempty"`
	BPM       int       `json:"bpm"`
	Events    int       `json:"events"`
	Size      int       `json:"size"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a render cache rooted at dir.
func New(dir string) (*RenderCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &RenderCache{dir: dir}, nil
}

// NewDefault creates a render cache in the user's cache directory, falling
// back to .cache/renders under the working directory.
func NewDefault() (*RenderCache, error) {
	dir, err := defaultDir()
	if err != nil {
		return nil, err
	}
	return New(dir)
}

func defaultDir() (string, error) {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "codegroove", "renders"), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working dir: %w", err)
	}
	return filepath.Join(cwd, ".cache", "renders"), nil
}

// Dir returns the cache root.
func (c *RenderCache) Dir() string {
	return c.dir
}

// Key derives a content address from everything that affects a render.
func Key(source, scale, format, kit string) string {
	h := sha256.New()
	for _, part := range []string{renderVersion, format, scale, kit} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write([]byte(source))
	return format + "_" + hex.EncodeToString(h.Sum(nil))[:24]
}

// Get returns the cached output and its rendered bytes for key.
func (c *RenderCache) Get(key string) (*CachedOutput, []byte, bool) {
	subdir := filepath.Join(c.dir, key)

	meta, err := os.ReadFile(filepath.Join(subdir, "meta.json"))
	if err != nil {
		return nil, nil, false
	}

	var out CachedOutput
	if err := json.Unmarshal(meta, &out); err != nil {
		return nil, nil, false
	}
	if out.Version != renderVersion {
		// Stale renderer - invalidate
		return nil, nil, false
	}

	body, err := os.ReadFile(filepath.Join(subdir, bodyName(out.Format)))
	if err != nil || len(body) != out.Size {
		return nil, nil, false
	}
	return &out, body, true
}

// Put stores body under key and records out as its metadata.
func (c *RenderCache) Put(key string, out *CachedOutput, body []byte) error {
	subdir := filepath.Join(c.dir, key)
	if err := os.MkdirAll(subdir, 0755); err != nil {
		return fmt.Errorf("create cache subdir: %w", err)
	}

	out.Key = key
	out.Size = len(body)
	out.Version = renderVersion
	out.CreatedAt = time.Now()

	if err := writeFileAtomic(filepath.Join(subdir, bodyName(out.Format)), body); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	meta, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(subdir, "meta.json"), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Clear removes all cached renders
func (c *RenderCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Size returns the total size of cached renders in bytes and the entry count.
func (c *RenderCache) Size() (int64, int, error) {
	var totalSize int64
	var count int

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		count++

		files, _ := os.ReadDir(filepath.Join(c.dir, entry.Name()))
		for _, f := range files {
			info, err := f.Info()
			if err == nil {
				totalSize += info.Size()
			}
		}
	}

	return totalSize, count, nil
}

func bodyName(format string) string {
	switch strings.ToLower(format) {
	case "midi":
		return "output.mid"
	case "strudel":
		return "output.strudel"
	default:
		return "output." + format
	}
}

// writeFileAtomic writes through a temp file so concurrent readers never
// see a partial render.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
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
	return os.Rename(tmp.Name(), path)
}
