// Package browser is the session facade: it owns one FTP session and one
// set of scratch files per request and orchestrates listing, selection,
// download and fitting into single operations.
package browser

import (
	"fmt"
	"image"

	"github.com/flakysalt/InkyPi/internal/ftpx"
	"github.com/flakysalt/InkyPi/internal/metrics"
	"github.com/flakysalt/InkyPi/internal/render"
	"github.com/flakysalt/InkyPi/internal/scratch"
)

// Browser produces display images from an FTP server. One instance owns at
// most one live session and is not safe for concurrent use; give each
// in-flight request its own instance.
type Browser struct {
	session *ftpx.Session
	scratch *scratch.Tracker

	// connect is swappable so tests can supply a fake transport.
	connect func(ftpx.Config) (*ftpx.Session, error)
}

// New returns a Browser ready for one request at a time.
func New() *Browser {
	return &Browser{
		scratch: scratch.NewTracker(),
		connect: ftpx.Connect,
	}
}

// GenerateImage renders one image for the given settings and display
// dimensions. Whatever happens, every scratch file created for the request
// is deleted and the session is closed before it returns — scratch files
// first, then the session, both best-effort.
func (b *Browser) GenerateImage(settings DisplaySettings, width, height int) (img image.Image, err error) {
	defer func() {
		b.scratch.RemoveAll()
		b.closeSession()
		if err != nil {
			metrics.IncRender("error")
		} else {
			metrics.IncRender("ok")
		}
	}()

	if settings.Server == "" {
		return nil, fmt.Errorf("%w: server is required", ftpx.ErrInvalidRequest)
	}
	policy, err := render.ParseVerticalPolicy(settings.VerticalHandling)
	if err != nil {
		return nil, err
	}

	sess, err := b.openSession(settings)
	if err != nil {
		return nil, err
	}

	selected := settings.SelectedImage
	if settings.RandomMode {
		images, err := sess.EnumerateImages(settings.CurrentPath)
		if err != nil {
			return nil, err
		}
		selected, err = render.PickRandom(images)
		if err != nil {
			return nil, fmt.Errorf("%w: under %s on %s", ftpx.ErrNotFound, settings.CurrentPath, settings.Server)
		}
	} else if selected == "" {
		return nil, fmt.Errorf("%w: no image selected and random mode is off", ftpx.ErrInvalidRequest)
	}

	localPath, err := sess.Fetch(selected, b.scratch)
	if err != nil {
		return nil, err
	}

	src, err := render.Open(localPath)
	if err != nil {
		return nil, err
	}
	return render.FitToDisplay(src, width, height, policy, settings.PadImage), nil
}

// ListDirectory connects and lists one directory: child directories and
// image files, sorted. The session lives only for this call.
func (b *Browser) ListDirectory(settings DisplaySettings, dirPath string) (listing *ftpx.Listing, err error) {
	defer func() {
		b.scratch.RemoveAll()
		b.closeSession()
	}()

	if settings.Server == "" {
		return nil, fmt.Errorf("%w: server is required", ftpx.ErrInvalidRequest)
	}

	sess, err := b.openSession(settings)
	if err != nil {
		return nil, err
	}
	return sess.List(dirPath)
}

// PreviewImage connects, downloads one remote image and returns it as a
// base64-encoded JPEG thumbnail of at most 200x200 pixels.
func (b *Browser) PreviewImage(settings DisplaySettings, imagePath string) (preview string, err error) {
	defer func() {
		b.scratch.RemoveAll()
		b.closeSession()
	}()

	if settings.Server == "" {
		return "", fmt.Errorf("%w: server is required", ftpx.ErrInvalidRequest)
	}
	if imagePath == "" {
		return "", fmt.Errorf("%w: image path is required", ftpx.ErrInvalidRequest)
	}

	sess, err := b.openSession(settings)
	if err != nil {
		return "", err
	}

	localPath, err := sess.Fetch(imagePath, b.scratch)
	if err != nil {
		return "", err
	}
	return render.Preview(localPath)
}

// openSession replaces any prior session with a fresh one.
func (b *Browser) openSession(settings DisplaySettings) (*ftpx.Session, error) {
	b.closeSession()
	sess, err := b.connect(settings.connConfig())
	if err != nil {
		return nil, err
	}
	b.session = sess
	return sess, nil
}

func (b *Browser) closeSession() {
	if b.session != nil {
		b.session.Close()
		b.session = nil
	}
}
