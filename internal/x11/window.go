package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Window is a realized top-level window for one scene window child.
type Window struct {
	conn   *Connection
	win    *xwindow.Window
	name   string
	width  int
	height int
}

// CreateWindow creates and names an unmapped top-level window. width and
// height are the natural size used in windowed mode.
func (c *Connection) CreateWindow(name string, width, height int) (*Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}
	if err := win.CreateChecked(c.Root, 0, 0, width, height, xproto.CwBackPixel, 0x000000); err != nil {
		return nil, fmt.Errorf("failed to create window %q: %w", name, err)
	}
	// Cosmetic only; a missing title is not worth failing startup for.
	_ = ewmh.WmNameSet(c.XUtil, win.Id, name)

	return &Window{conn: c, win: win, name: name, width: width, height: height}, nil
}

// Name returns the scene name the window was created under.
func (w *Window) Name() string {
	return w.name
}

// Show places the window and maps it. Fullscreen claims the whole screen
// geometry and asks for the EWMH fullscreen state, which matters when
// running nested under another window manager. Windowed mode comes up at
// the screen origin in the window's natural size.
func (w *Window) Show(x, y, width, height int, fullscreen bool) error {
	if !fullscreen {
		width, height = w.width, w.height
	}
	w.win.MoveResize(x, y, width, height)
	w.win.Map()
	if fullscreen {
		_ = ewmh.WmStateReq(w.conn.XUtil, w.win.Id, 1, "_NET_WM_STATE_FULLSCREEN")
	}
	return nil
}
