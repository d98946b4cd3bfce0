package image

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"tint-care/internal/scene"

	"github.com/sirupsen/logrus"
)

// Fetcher downloads remote resources. catalog.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Sink receives decoded images. scene.Editor implements it.
type Sink interface {
	AddImage(img image.Image, source string) *scene.Shape
}

// Loader decodes image sources in the background and inserts each into the
// sink as soon as it is ready. Loads are independent: the order in which
// images land in the scene is the order their decodes finish. A source that
// cannot be fetched or decoded is logged and dropped.
type Loader struct {
	fetcher Fetcher
	sink    Sink
	wg      sync.WaitGroup

	// OnError, when set, is called for every failed source.
	OnError func(source string, err error)
}

// NewLoader creates a loader feeding sink. fetcher may be nil when only
// files and data URLs are loaded.
func NewLoader(fetcher Fetcher, sink Sink) *Loader {
	return &Loader{fetcher: fetcher, sink: sink}
}

// Load starts decoding source, which may be an http(s) URL, a data: URL or a
// file path.
func (l *Loader) Load(ctx context.Context, source string) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		img, err := l.resolve(ctx, source)
		if err != nil {
			logrus.WithField("source", truncate(source)).WithError(err).Warn("image load failed")
			if l.OnError != nil {
				l.OnError(source, err)
			}
			return
		}
		l.sink.AddImage(img, source)
		logrus.WithField("source", truncate(source)).Debug("image loaded")
	}()
}

// LoadAll starts a load for every source.
func (l *Loader) LoadAll(ctx context.Context, sources []string) {
	for _, source := range sources {
		l.Load(ctx, source)
	}
}

// LoadFile starts loading an image file picked by the user.
func (l *Loader) LoadFile(ctx context.Context, path string) {
	l.Load(ctx, path)
}

// Wait blocks until every started load has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) resolve(ctx context.Context, source string) (image.Image, error) {
	switch {
	case IsDataURL(source):
		return DecodeDataURL(source)
	case IsRemote(source):
		if l.fetcher == nil {
			return nil, fmt.Errorf("no fetcher for %s", source)
		}
		body, err := l.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		img, _, err := Decode(body)
		return img, err
	default:
		return LoadFile(source)
	}
}

// truncate keeps data URLs out of the logs.
func truncate(source string) string {
	const limit = 64
	if len(source) <= limit {
		return source
	}
	return source[:limit] + "..."
}
