package display

import (
	"fmt"
	"log/slog"
	"strings"
)

// NoMatchError reports a screen selection that matched nothing. It carries
// both sides so the user sees what was asked for and what actually exists.
type NoMatchError struct {
	Requested []string
	Available []Screen
}

func (e *NoMatchError) Error() string {
	names := make([]string, len(e.Available))
	for i, scr := range e.Available {
		g := scr.Geometry
		names[i] = fmt.Sprintf("%s %dx%d+%d+%d", scr.Name, g.Width, g.Height, g.X, g.Y)
	}
	return fmt.Sprintf("none of the screens %s exist; available screens: %s",
		strings.Join(e.Requested, " "), strings.Join(names, ", "))
}

// Filter keeps the screens whose names match the requested set,
// case-insensitively, preserving enumeration order. An empty request keeps
// everything. A request that matches nothing is a configuration error, not
// a retryable condition.
func Filter(screens []Screen, requested []string) ([]Screen, error) {
	if len(requested) == 0 {
		return screens, nil
	}
	var keep []Screen
	for _, scr := range screens {
		for _, name := range requested {
			if strings.EqualFold(scr.Name, name) {
				keep = append(keep, scr)
				break
			}
		}
	}
	if len(keep) == 0 {
		return nil, &NoMatchError{Requested: requested, Available: screens}
	}
	return keep, nil
}

// Placement is one screen/window pairing.
type Placement struct {
	Screen Screen
	Window Window
}

// Pair zips screens and windows position by position. Surplus on either
// side stays unassigned: a single-window startup on a three-screen machine
// is fine, and so is the reverse.
func Pair(screens []Screen, windows []Window) []Placement {
	n := min(len(screens), len(windows))
	placements := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		placements = append(placements, Placement{Screen: screens[i], Window: windows[i]})
	}
	return placements
}

// ScreenCheck logs one line per active screen before the scene engages.
func ScreenCheck(logger *slog.Logger, screens []Screen) {
	for _, scr := range screens {
		g := scr.Geometry
		logger.Debug("screen",
			"name", scr.Name,
			"geometry", fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, g.X, g.Y),
			"physical_mm", fmt.Sprintf("%dx%d", scr.Physical.WidthMM, scr.Physical.HeightMM),
			"dpi", fmt.Sprintf("%.1f", scr.DPI))
	}
}
