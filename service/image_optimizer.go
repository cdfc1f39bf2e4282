package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	// Logo box in the quotation header, in pixels
	logoMaxWidth  = 240
	logoMaxHeight = 120
	logoQuality   = 80

	// maxLogoBytes bounds a logo download or file read
	maxLogoBytes = 5 << 20
)

// ErrLogoPathNotAllowed is returned for local logo paths when no logo directory is configured
// or the path points outside of it
var ErrLogoPathNotAllowed = errors.New("logo path not allowed")

// OptimizeImage fits an image inside maxW x maxH keeping the aspect ratio and re-encodes it as JPEG.
// Images already inside the box are only re-encoded.
func OptimizeImage(imageData []byte, maxW, maxH, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	var resized image.Image = img
	if bounds.Dx() > maxW || bounds.Dy() > maxH {
		resized = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
		zap.S().Debugf("🔄 Resizing image: %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), resized.Bounds().Dx(), resized.Bounds().Dy())
	}

	// JPEG has no alpha channel: flatten transparent logos onto white
	canvas := imaging.New(resized.Bounds().Dx(), resized.Bounds().Dy(), image.White)
	canvas = imaging.Overlay(canvas, resized, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// LogoLoader reads product logos over HTTP or from a local directory and caches them as data URIs
type LogoLoader struct {
	client *http.Client
	dir    string
	mu     sync.Mutex
	cache  map[string]string
}

// NewLogoLoader creates a new LogoLoader. Local paths are only read inside dir; an empty dir
// limits logos to http(s) URLs.
func NewLogoLoader(client *http.Client, dir string) *LogoLoader {
	if client == nil {
		client = http.DefaultClient
	}
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	return &LogoLoader{client: client, dir: dir, cache: make(map[string]string)}
}

// DataURI returns the optimized logo at path as a data URI
func (l *LogoLoader) DataURI(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	l.mu.Lock()
	if uri, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return uri, nil
	}
	l.mu.Unlock()

	raw, err := l.read(ctx, path)
	if err != nil {
		return "", err
	}
	optimized, err := OptimizeImage(raw, logoMaxWidth, logoMaxHeight, logoQuality)
	if err != nil {
		return "", err
	}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(optimized)

	l.mu.Lock()
	l.cache[path] = uri
	l.mu.Unlock()
	return uri, nil
}

func (l *LogoLoader) read(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return l.readFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build logo request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logo endpoint returned status %d", resp.StatusCode)
	}
	return readLogo(resp.Body)
}

// readFile opens path through an os.Root so it cannot leave the logo directory
func (l *LogoLoader) readFile(path string) ([]byte, error) {
	if l.dir == "" {
		return nil, fmt.Errorf("%w: %s", ErrLogoPathNotAllowed, path)
	}
	name := path
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrLogoPathNotAllowed, path)
		}
		name = rel
	}

	root, err := os.OpenRoot(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open logo directory: %w", err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogoPathNotAllowed, err)
	}
	defer f.Close()
	return readLogo(f)
}

func readLogo(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxLogoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	if len(data) > maxLogoBytes {
		return nil, fmt.Errorf("logo larger than %d bytes", maxLogoBytes)
	}
	return data, nil
}
