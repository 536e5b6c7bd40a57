package static

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/static"
)

// CachedFile holds an embedded asset and the metadata used in HTTP cache
// headers.
type CachedFile struct {
	ETag         string
	ContentType  string
	Size         int64
	LastModified time.Time
	body         []byte
}

// StaticCache keeps every embedded asset in memory. The embedded filesystem
// is immutable, so entries are built once and read without locking.
type StaticCache struct {
	entries map[string]CachedFile
}

// NewStaticCache loads the embedded assets.
func NewStaticCache() (*StaticCache, error) {
	return NewStaticCacheFS(static.FS)
}

// NewStaticCacheFS loads every file of fsys and computes its ETag.
func NewStaticCacheFS(fsys fs.FS) (*StaticCache, error) {
	c := &StaticCache{entries: make(map[string]CachedFile)}
	loaded := time.Now().UTC().Truncate(time.Second)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		contentType := mime.TypeByExtension(path.Ext(p))
		if contentType == "" {
			contentType = http.DetectContentType(body)
		}
		// embed.FS reports zero mod times; the process start stands in.
		modTime := loaded
		if info, err := d.Info(); err == nil && !info.ModTime().IsZero() {
			modTime = info.ModTime()
		}

		c.entries[p] = CachedFile{
			ETag:         fmt.Sprintf("\"%x\"", sha256.Sum256(body)),
			ContentType:  contentType,
			Size:         int64(len(body)),
			LastModified: modTime,
			body:         body,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// cacheControl picks the Cache-Control header for an asset path.
func cacheControl(p string) string {
	ext := path.Ext(p)
	// dist/ assets are not fingerprinted, so clients must revalidate.
	if strings.HasPrefix(p, "dist/") && (ext == ".css" || ext == ".js") {
		return "no-cache, must-revalidate"
	}
	switch ext {
	case ".css", ".js":
		return "public, max-age=86400, stale-while-revalidate=3600" // 1 day
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp", ".woff", ".woff2":
		return "public, max-age=31536000, stale-while-revalidate=86400" // 1 year
	}
	return "public, max-age=3600, stale-while-revalidate=300" // 1 hour
}

// ServeStaticFile serves cached assets below prefix with ETag and
// Last-Modified revalidation.
func (s *StaticCache) ServeStaticFile(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := strings.TrimPrefix(c.Request().URL.Path, prefix)
		ci, ok := s.entries[p]
		if !ok {
			return echo.ErrNotFound
		}

		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, cacheControl(p))
		h.Set("ETag", ci.ETag)
		h.Set(echo.HeaderLastModified, ci.LastModified.Format(http.TimeFormat))

		// If client has up-to-date version, return 304
		if inm := c.Request().Header.Get("If-None-Match"); inm != "" {
			if inm == ci.ETag {
				return c.NoContent(http.StatusNotModified)
			}
		} else if ims := c.Request().Header.Get(echo.HeaderIfModifiedSince); ims != "" {
			if t, err := http.ParseTime(ims); err == nil && !ci.LastModified.Truncate(time.Second).After(t) {
				return c.NoContent(http.StatusNotModified)
			}
		}

		return c.Stream(http.StatusOK, ci.ContentType, bytes.NewReader(ci.body))
	}
}
