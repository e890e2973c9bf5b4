package display

// Geometry is a rectangle in global screen coordinates.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// PhysicalSize is the reported panel size in millimetres.
type PhysicalSize struct {
	WidthMM  int
	HeightMM int
}

// Screen describes one enumerated output.
type Screen struct {
	Name     string
	Geometry Geometry
	Physical PhysicalSize
	DPI      float64
}

// Window is a realized top-level window owned by the backend.
type Window interface {
	Name() string
	Show(screen Screen, fullscreen bool) error
}

// Pane is the input-blocking glass pane stretched over the active screens.
type Pane interface {
	Raise()
	Lower()
}

// Backend abstracts the display server the compositor front end runs on.
// Rendering, input dispatch and protocol plumbing all live behind it.
type Backend interface {
	Screens() ([]Screen, error)
	CreateWindow(name string, width, height int) (Window, error)
	CreateGlassPane(screens []Screen) (Pane, error)
	EventLoop()
	Quit()
	Close()
}

// DPIFor derives dots per inch from a pixel extent and a millimetre extent.
// Outputs with no physical size report 0.
func DPIFor(pixels, mm int) float64 {
	if mm <= 0 {
		return 0
	}
	return float64(pixels) / (float64(mm) / 25.4)
}

// Bounds returns the bounding box of the given screens.
func Bounds(screens []Screen) Geometry {
	if len(screens) == 0 {
		return Geometry{}
	}
	g := screens[0].Geometry
	x1, y1 := g.X, g.Y
	x2, y2 := g.X+g.Width, g.Y+g.Height
	for _, scr := range screens[1:] {
		g := scr.Geometry
		x1 = min(x1, g.X)
		y1 = min(y1, g.Y)
		x2 = max(x2, g.X+g.Width)
		y2 = max(y2, g.Y+g.Height)
	}
	return Geometry{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
