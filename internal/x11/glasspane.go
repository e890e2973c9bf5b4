package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// GlassPane is the input-blocking pane stretched over the active screens.
// It stays unmapped until input has to be withheld from client windows.
// Override-redirect keeps any outer window manager from touching it.
type GlassPane struct {
	conn *Connection
	win  *xwindow.Window
}

// CreateGlassPane creates the pane covering the given region, unmapped.
func (c *Connection) CreateGlassPane(x, y, width, height int) (*GlassPane, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate glass pane id: %w", err)
	}
	if err := win.CreateChecked(c.Root, x, y, width, height, xproto.CwOverrideRedirect, 1); err != nil {
		return nil, fmt.Errorf("failed to create glass pane: %w", err)
	}
	return &GlassPane{conn: c, win: win}, nil
}

// Raise maps the pane above every client window.
func (p *GlassPane) Raise() {
	p.win.Map()
	p.win.Stack(xproto.StackModeAbove)
}

// Lower hides the pane again.
func (p *GlassPane) Lower() {
	p.win.Unmap()
}
