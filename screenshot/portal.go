package screenshot

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"github.com/godbus/dbus/v5"

	"golang.org/x/image/draw"
)

const (
	portalDest       = "org.freedesktop.portal.Desktop"
	portalPath       = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	screenshotMethod = "org.freedesktop.portal.Screenshot.Screenshot"
	requestIface     = "org.freedesktop.portal.Request"
)

// Portal captures through the org.freedesktop.portal.Screenshot D-Bus
// interface. The portal only shoots the full screen, so regions are
// cropped out of the returned image.
type Portal struct {
	conn *dbus.Conn
	seq  atomic.Uint64
}

// NewPortal connects to the session bus.
func NewPortal() (*Portal, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	return &Portal{conn: conn}, nil
}

// CaptureScreen asks the portal for a non-interactive full-screen
// shot and loads the file it hands back.
func (p *Portal) CaptureScreen(ctx context.Context) (*image.RGBA, error) {
	token := fmt.Sprintf("screenocr%d", p.seq.Add(1))
	requestPath := p.requestPath(token)

	matchOpts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(requestPath),
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
	}
	if err := p.conn.AddMatchSignal(matchOpts...); err != nil {
		return nil, fmt.Errorf("subscribe to portal response: %w", err)
	}
	defer p.conn.RemoveMatchSignal(matchOpts...)

	signals := make(chan *dbus.Signal, 8)
	p.conn.Signal(signals)
	defer p.conn.RemoveSignal(signals)

	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
		"interactive":  dbus.MakeVariant(false),
	}
	var handle dbus.ObjectPath
	call := p.conn.Object(portalDest, portalPath).CallWithContext(ctx, screenshotMethod, 0, "", options)
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig := <-signals:
			if sig == nil || (sig.Path != requestPath && sig.Path != handle) {
				continue
			}
			return loadResponse(sig.Body)
		}
	}
}

// CaptureRegion shoots the full screen and crops.
func (p *Portal) CaptureRegion(ctx context.Context, region Region) (*image.RGBA, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	full, err := p.CaptureScreen(ctx)
	if err != nil {
		return nil, err
	}
	return Crop(full, region)
}

// requestPath precomputes where the portal will publish the request
// object: the caller's unique bus name with ':' stripped and '.'
// replaced, plus the handle token.
func (p *Portal) requestPath(token string) dbus.ObjectPath {
	sender := strings.TrimPrefix(p.conn.Names()[0], ":")
	sender = strings.ReplaceAll(sender, ".", "_")
	return dbus.ObjectPath("/org/freedesktop/portal/desktop/request/" + sender + "/" + token)
}

// loadResponse unpacks a portal Response signal body: a status code
// followed by a result dict carrying the screenshot URI.
func loadResponse(body []interface{}) (*image.RGBA, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("malformed portal response: %v", body)
	}
	code, _ := body[0].(uint32)
	if code != 0 {
		return nil, fmt.Errorf("portal screenshot denied (response code %d)", code)
	}
	results, _ := body[1].(map[string]dbus.Variant)
	uriVariant, ok := results["uri"]
	if !ok {
		return nil, fmt.Errorf("portal response missing uri")
	}
	uri, _ := uriVariant.Value().(string)
	return loadScreenshotURI(uri)
}

// loadScreenshotURI reads the portal's screenshot file and removes it
// afterwards so shots do not pile up in the user's pictures folder.
func loadScreenshotURI(uri string) (*image.RGBA, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse screenshot uri %q: %w", uri, err)
	}
	if parsed.Scheme != "file" {
		return nil, fmt.Errorf("unexpected screenshot uri scheme %q", parsed.Scheme)
	}

	f, err := os.Open(parsed.Path)
	if err != nil {
		return nil, fmt.Errorf("open screenshot file: %w", err)
	}
	defer f.Close()
	defer os.Remove(parsed.Path)

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
