package imaging

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
	"time"

	"github.com/disintegration/imaging"
)

// ErrEmptySource is returned when a source carries no data.
var ErrEmptySource = errors.New("empty image source")

// DefaultFetchTimeout bounds remote image downloads.
const DefaultFetchTimeout = 30 * time.Second

// maxRemoteBytes caps the size of a downloaded image.
const maxRemoteBytes = 32 << 20

// Source is an image reference accepted for recognition. The concrete types
// are URL, S3, Base64, Blob, Bitmap and File.
type Source interface {
	// Kind names the source type for logs and results.
	Kind() string
	isSource()
}

// URL is an http or https image location.
type URL string

// Base64 is base64-encoded image data, optionally as a data URI
// ("data:image/png;base64,...").
type Base64 string

// Blob is encoded image data held in memory.
type Blob []byte

// Bitmap is an already decoded, in-memory image.
type Bitmap struct {
	Image image.Image
}

// File is a path to an image on local disk.
type File string

func (URL) Kind() string    { return "url" }
func (Base64) Kind() string { return "base64" }
func (Blob) Kind() string   { return "blob" }
func (Bitmap) Kind() string { return "bitmap" }
func (File) Kind() string   { return "file" }

func (URL) isSource()    {}
func (Base64) isSource() {}
func (Blob) isSource()   {}
func (Bitmap) isSource() {}
func (File) isSource()   {}

// ParseSource classifies a string reference:
//   - "http://" or "https://" prefix -> URL
//   - "s3://" prefix -> S3
//   - "data:" prefix -> Base64
//   - names an existing file -> File
//   - "/9j/" prefix (base64 JPEG) -> Base64
//   - "/", "./", "../", "~/" or drive-letter prefix -> File
//   - 32+ characters, all from the base64 alphabet -> Base64
//   - contains a path separator or has an image file extension -> File
//   - anything else -> Base64
//
// The contents are not validated here; a bad reference fails when loaded.
func ParseSource(ref string) Source {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return URL(ref)
	case strings.HasPrefix(lower, "s3://"):
		return parseS3(ref)
	case strings.HasPrefix(lower, "data:"):
		return Base64(ref)
	case isFile(ref):
		return File(ref)
	case strings.HasPrefix(ref, "/9j/"):
		return Base64(ref)
	case isPathLike(ref):
		return File(ref)
	case len(ref) >= 32 && isBase64Text(ref):
		return Base64(ref)
	case strings.ContainsAny(ref, `/\`), isImageExt(filepath.Ext(lower)):
		return File(ref)
	default:
		return Base64(ref)
	}
}

func isFile(ref string) bool {
	info, err := os.Stat(ref)
	return err == nil && info.Mode().IsRegular()
}

func isPathLike(ref string) bool {
	for _, prefix := range []string{"/", "./", "../", "~/", `.\`, `..\`} {
		if strings.HasPrefix(ref, prefix) {
			return true
		}
	}
	// C:\ or C:/
	return len(ref) >= 3 && isLetter(ref[0]) && ref[1] == ':' && (ref[2] == '\\' || ref[2] == '/')
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isBase64Text(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '+' || r == '/' || r == '=':
		default:
			return false
		}
	}
	return true
}

func isImageExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".pnm", ".pbm", ".pgm":
		return true
	}
	return false
}

// Loader turns Sources into encoded image bytes ready for the OCR engine.
//
// Loader is safe for concurrent use.
type Loader struct {
	cache   *ImageCache
	client  *http.Client
	timeout time.Duration

	s3Once sync.Once
	s3     ObjectGetter
	s3Err  error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// NewLoader creates a Loader. A nil cache gets a fresh ImageCache; a
// non-positive fetchTimeout uses DefaultFetchTimeout.
func NewLoader(cache *ImageCache, fetchTimeout time.Duration, opts ...LoaderOption) *Loader {
	if cache == nil {
		cache = NewImageCache()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	l := &Loader{
		cache:   cache,
		client:  &http.Client{Timeout: fetchTimeout},
		timeout: fetchTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cache returns the loader's image cache.
func (l *Loader) Cache() *ImageCache {
	return l.cache
}

// Prepared is image data ready for the OCR engine.
type Prepared struct {
	// Data is the encoded image.
	Data []byte

	// Kind is the Kind of the originating Source.
	Kind string

	// origin is the top-left of the processed area in the source image.
	origin image.Point
	scale  float64
}

// ToSource maps a point in the prepared image back to the original image,
// undoing any crop, trim and scale.
func (p *Prepared) ToSource(x, y int) (int, int) {
	if p.scale > 0 && p.scale != 1 {
		x = int(float64(x) / p.scale)
		y = int(float64(y) / p.scale)
	}
	return x + p.origin.X, y + p.origin.Y
}

// Prepare loads src and applies the preprocessing steps in p.
//
// When p is the zero value, encoded sources are passed through untouched so
// that the engine sees the original format. Otherwise the image is decoded,
// processed and re-encoded as PNG.
func (l *Loader) Prepare(ctx context.Context, src Source, p Preprocess) (*Prepared, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrEmptySource
	}

	if p.IsZero() {
		data, err := l.Bytes(ctx, src)
		if err != nil {
			return nil, err
		}
		prepared := &Prepared{Data: data, Kind: src.Kind()}
		// Encoding rebases a bitmap at (0,0)
		if b, ok := src.(Bitmap); ok {
			prepared.origin = b.Image.Bounds().Min
		}
		return prepared, nil
	}

	img, err := l.Decode(ctx, src)
	if err != nil {
		return nil, err
	}

	processed, origin, err := p.process(img)
	if err != nil {
		return nil, err
	}
	data, err := encodePNG(processed)
	if err != nil {
		return nil, err
	}
	return &Prepared{Data: data, Kind: src.Kind(), origin: origin, scale: p.Scale}, nil
}

// Bytes returns the encoded image data referenced by src. Bitmaps are
// encoded as PNG.
func (l *Loader) Bytes(ctx context.Context, src Source) ([]byte, error) {
	switch s := src.(type) {
	case URL:
		return l.fetch(ctx, string(s))
	case S3:
		return l.fetchS3(ctx, s)
	case Base64:
		return decodeBase64(string(s))
	case Blob:
		if len(s) == 0 {
			return nil, ErrEmptySource
		}
		return []byte(s), nil
	case Bitmap:
		if s.Image == nil {
			return nil, ErrEmptySource
		}
		return encodePNG(s.Image)
	case File:
		data, err := os.ReadFile(string(s))
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return data, nil
	case nil:
		return nil, ErrEmptySource
	default:
		return nil, fmt.Errorf("unsupported image source %T", src)
	}
}

// Decode returns the decoded image referenced by src. File sources go
// through the image cache.
func (l *Loader) Decode(ctx context.Context, src Source) (image.Image, error) {
	switch s := src.(type) {
	case Bitmap:
		if s.Image == nil {
			return nil, ErrEmptySource
		}
		return s.Image, nil
	case File:
		return l.cache.Load(string(s))
	}

	data, err := l.Bytes(ctx, src)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch image: %s returned %s", url, resp.Status)
	}

	return readRemote(resp.Body, url)
}

// readRemote reads a downloaded image, enforcing maxRemoteBytes.
func readRemote(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxRemoteBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) > maxRemoteBytes {
		return nil, fmt.Errorf("image at %s exceeds %d bytes", name, maxRemoteBytes)
	}
	if len(data) == 0 {
		return nil, ErrEmptySource
	}
	return data, nil
}

// decodeBase64 accepts padded or unpadded standard base64, with or without
// a data URI header.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		if !strings.Contains(strings.ToLower(s[:comma]), ";base64") {
			return nil, fmt.Errorf("data URI is not base64-encoded")
		}
		s = s[comma+1:]
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, ErrEmptySource
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 image data: %w", err)
		}
	}
	return data, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
