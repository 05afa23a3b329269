package storage

import (
	"fmt"
	mathrand "math/rand"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"sjsage522/aplusworker/helpers"
	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/pkg/errors"
)

// Inter-download delay bounds, so image hosts see paced traffic.
const (
	downloadDelayMin = 100 * time.Millisecond
	downloadDelayMax = 300 * time.Millisecond
)

const maxDirNameLength = 100

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	spaceRuns        = regexp.MustCompile(`\s+`)
)

// extensions maps sniffed content types to file extensions. Anything
// unrecognized falls back to .jpg.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// FetchFunc downloads one image body.
type FetchFunc func(url string) ([]byte, error)

// Run is the saving context for one product extraction: a single
// output directory and one dedup set spanning every category, so the
// same asset referenced by hero and gallery lands on disk once.
type Run interface {
	// SaveImages downloads urls into the category directory named by
	// prefix, numbering files by position. Per-URL failures are
	// skipped; the error covers directory and write failures only.
	SaveImages(prefix string, urls []string) ([]string, error)

	// Dir returns the run's output directory.
	Dir() string
}

// Saver opens saving runs under a storage root.
type Saver interface {
	NewRun(product string) (Run, error)
}

// FileSaver implements Saver on the local filesystem.
type FileSaver struct {
	root     string
	minBytes int
	fetch    FetchFunc
	delayMin time.Duration
	delayMax time.Duration
	rnd      *mathrand.Rand
}

// NewFileSaver creates a saver rooted at root. Images smaller than
// minBytes are treated as placeholders and dropped.
func NewFileSaver(root string, minBytes int) *FileSaver {
	return &FileSaver{
		root:     root,
		minBytes: minBytes,
		fetch:    helpers.FetchSimply,
		delayMin: downloadDelayMin,
		delayMax: downloadDelayMax,
		rnd:      mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// NewRun creates the output directory for one product and returns the
// saving context. An existing directory gets a numeric suffix instead
// of being reused, matching a fresh extraction to a fresh directory.
func (s *FileSaver) NewRun(product string) (Run, error) {
	name := sanitizeName(product)
	base := filepath.Join(s.root, name)

	dir := base
	for n := 2; ; n++ {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		dir = fmt.Sprintf("%s (%d)", base, n)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewStorage("storage", "failed to create output directory", err)
	}

	return &fileRun{saver: s, dir: dir, seen: make(map[string]struct{})}, nil
}

type fileRun struct {
	saver *FileSaver
	dir   string
	seen  map[string]struct{}
}

func (r *fileRun) Dir() string {
	return r.dir
}

func (r *fileRun) SaveImages(prefix string, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	categoryDir := filepath.Join(r.dir, prefix)
	if err := os.MkdirAll(categoryDir, 0o755); err != nil {
		return nil, errors.NewStorage("storage", "failed to create category directory", err)
	}

	var saved []string
	for i, url := range urls {
		if i > 0 {
			r.saver.pause()
		}

		data, err := r.saver.fetch(url)
		if err != nil {
			logger.Debug("[storage] download failed for %s: %v", url, err)
			continue
		}
		if len(data) < r.saver.minBytes {
			logger.Debug("[storage] dropping %d byte placeholder from %s", len(data), url)
			continue
		}

		contentType := http.DetectContentType(data)
		if !strings.HasPrefix(contentType, "image/") {
			logger.Debug("[storage] %s served %s instead of an image", url, contentType)
			continue
		}

		digest := helpers.MD5Hex(data)
		if _, dup := r.seen[digest]; dup {
			logger.Debug("[storage] duplicate image skipped (md5 %.8s)", digest)
			continue
		}

		name := fmt.Sprintf("%s%d%s", prefix, i+1, extensionFor(contentType))
		path := filepath.Join(categoryDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return saved, errors.NewStorage("storage", "failed to write "+name, err)
		}

		r.seen[digest] = struct{}{}
		saved = append(saved, path)
	}

	if len(saved) > 0 {
		logger.ForStorage().Info().
			Str("prefix", prefix).
			Int("count", len(saved)).
			Msg("saved images")
	}

	return saved, nil
}

func (s *FileSaver) pause() {
	if s.delayMax <= s.delayMin {
		return
	}
	time.Sleep(s.delayMin + time.Duration(s.rnd.Int63n(int64(s.delayMax-s.delayMin))))
}

func extensionFor(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	return ".jpg"
}

// sanitizeName makes a product name safe as a directory name.
func sanitizeName(name string) string {
	s := invalidNameChars.ReplaceAllString(name, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = strings.Trim(s, " .")
	if r := []rune(s); len(r) > maxDirNameLength {
		s = strings.TrimSpace(string(r[:maxDirNameLength]))
	}
	if s == "" {
		return "unnamed"
	}
	return s
}
