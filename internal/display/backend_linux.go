//go:build linux

package display

import (
	"fmt"

	"github.com/liever18/grefsen/internal/x11"
)

// X11Backend wraps an X connection behind the Backend interface.
type X11Backend struct {
	conn *x11.Connection
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend opens a fresh connection to the display server.
func NewX11Backend() (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Backend{conn: conn}, nil
}

// Screens enumerates active outputs, deriving DPI from the physical width.
func (b *X11Backend) Screens() ([]Screen, error) {
	raw, err := b.conn.Screens()
	if err != nil {
		return nil, err
	}
	screens := make([]Screen, 0, len(raw))
	for _, scr := range raw {
		screens = append(screens, Screen{
			Name:     scr.Name,
			Geometry: Geometry{X: scr.X, Y: scr.Y, Width: scr.Width, Height: scr.Height},
			Physical: PhysicalSize{WidthMM: scr.MmWidth, HeightMM: scr.MmHeight},
			DPI:      DPIFor(scr.Width, scr.MmWidth),
		})
	}
	return screens, nil
}

// CreateWindow realizes one top-level scene window, unmapped.
func (b *X11Backend) CreateWindow(name string, width, height int) (Window, error) {
	win, err := b.conn.CreateWindow(name, width, height)
	if err != nil {
		return nil, err
	}
	return &x11Window{win: win}, nil
}

// CreateGlassPane builds the input-blocking pane over the bounding box of
// the active screens.
func (b *X11Backend) CreateGlassPane(screens []Screen) (Pane, error) {
	g := Bounds(screens)
	pane, err := b.conn.CreateGlassPane(g.X, g.Y, g.Width, g.Height)
	if err != nil {
		return nil, err
	}
	return pane, nil
}

// EventLoop runs the display server event loop (blocking).
func (b *X11Backend) EventLoop() {
	b.conn.EventLoop()
}

// Quit stops the event loop, letting EventLoop return.
func (b *X11Backend) Quit() {
	b.conn.Quit()
}

// Close disconnects from the display server.
func (b *X11Backend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

type x11Window struct {
	win *x11.Window
}

func (w *x11Window) Name() string {
	return w.win.Name()
}

func (w *x11Window) Show(scr Screen, fullscreen bool) error {
	g := scr.Geometry
	return w.win.Show(g.X, g.Y, g.Width, g.Height, fullscreen)
}
