package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Screen is a raw RandR output: name, geometry and physical panel size.
type Screen struct {
	Name     string
	X        int
	Y        int
	Width    int
	Height   int
	MmWidth  int
	MmHeight int
}

// Screens enumerates the active outputs via RandR. Disabled CRTCs are
// skipped; outputs without a name get a positional fallback.
func (c *Connection) Screens() ([]Screen, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var screens []Screen
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		scr := Screen{
			Name:   fmt.Sprintf("Screen%d", i),
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			scr.Name = string(outputInfo.Name)
			scr.MmWidth = int(outputInfo.MmWidth)
			scr.MmHeight = int(outputInfo.MmHeight)
		}
		screens = append(screens, scr)
	}

	return screens, nil
}
