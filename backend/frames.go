package backend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"github.com/soocke/frame-annotator/domain/annotation"
)

// Frame is a decoded frame image.
type Frame struct {
	Image     image.Image
	Bytes     int // encoded size as received
	FetchedAt time.Time
}

// FrameAPI is the subset of Client used by Frames.
type FrameAPI interface {
	SetFrameNumber(ctx context.Context, frame int) error
	CurrentImage(ctx context.Context) ([]byte, error)
	Image(ctx context.Context, name string) ([]byte, error)
}

// Frames fetches and decodes frame images. Decoded frames are kept in an LRU
// cache and concurrent fetches of the same frame share one request. Video
// frames need the backend cursor moved before the image is read, so those
// two calls are serialized.
type Frames struct {
	api      FrameAPI
	logger   *slog.Logger
	cache    *lru.Cache[string, Frame]
	group    singleflight.Group
	cursorMu sync.Mutex
	timeout  time.Duration

	// gen advances on Purge so loads started before it are not cached.
	gen atomic.Uint64
}

// NewFrames returns a fetcher caching up to size decoded frames.
func NewFrames(api FrameAPI, size int, timeout time.Duration, logger *slog.Logger) (*Frames, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[string, Frame](size)
	if err != nil {
		return nil, err
	}
	return &Frames{api: api, logger: logger, cache: cache, timeout: timeout}, nil
}

// VideoFrame returns frame n of video.
func (f *Frames) VideoFrame(ctx context.Context, video string, n int) (Frame, error) {
	return f.fetch(ctx, videoKey(video, n), func(ctx context.Context) ([]byte, error) {
		f.cursorMu.Lock()
		defer f.cursorMu.Unlock()
		if err := f.api.SetFrameNumber(ctx, n); err != nil {
			return nil, err
		}
		return f.api.CurrentImage(ctx)
	})
}

// GalleryImage returns the gallery image called name.
func (f *Frames) GalleryImage(ctx context.Context, name string) (Frame, error) {
	return f.fetch(ctx, "image:"+name, func(ctx context.Context) ([]byte, error) {
		return f.api.Image(ctx, name)
	})
}

// Cached reports whether frame n of video is already decoded.
func (f *Frames) Cached(video string, n int) bool { return f.cache.Contains(videoKey(video, n)) }

// Purge drops every cached frame, e.g. after the backend data changed or its
// frame cursor moved to another video.
func (f *Frames) Purge() {
	f.gen.Add(1)
	f.cache.Purge()
}

// Prefetch loads frame n of video in the background so stepping forward
// does not wait on the network. Errors are only logged.
func (f *Frames) Prefetch(video string, n int) {
	if n < 0 || f.Cached(video, n) {
		return
	}
	go func() {
		ctx := context.Background()
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}
		if _, err := f.VideoFrame(ctx, video, n); err != nil && f.logger != nil {
			f.logger.Debug("prefetch failed", "video", video, "frame", n, "error", err)
		}
	}()
}

func (f *Frames) fetch(ctx context.Context, key string, load func(context.Context) ([]byte, error)) (Frame, error) {
	if fr, ok := f.cache.Get(key); ok {
		return fr, nil
	}
	gen := f.gen.Load()
	v, err, _ := f.group.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		data, err := load(ctx)
		if err != nil {
			return Frame{}, err
		}
		img, err := Decode(data)
		if err != nil {
			return Frame{}, err
		}
		fr := Frame{Image: img, Bytes: len(data), FetchedAt: time.Now()}
		if f.gen.Load() == gen {
			f.cache.Add(key, fr)
		}
		return fr, nil
	})
	if err != nil {
		return Frame{}, err
	}
	return v.(Frame), nil
}

// Decode decodes an encoded frame (JPEG, PNG, GIF, BMP, TIFF or WebP),
// applying the EXIF orientation when present.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w: %v", annotation.ErrLoadFailure, err)
	}
	return img, nil
}

func videoKey(video string, n int) string { return "video:" + video + "#" + strconv.Itoa(n) }
