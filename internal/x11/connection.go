package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X connection the compositor front end runs on.
// When grefsen runs nested for development this is a regular client
// connection; on bare hardware it talks to the display server directly.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the X server.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop starts the main X event loop (blocking).
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit asks the event loop to stop after the current event.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
