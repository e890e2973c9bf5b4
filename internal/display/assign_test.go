package display

import (
	"errors"
	"strings"
	"testing"
)

func screensFixture() []Screen {
	return []Screen{
		{Name: "HDMI-1", Geometry: Geometry{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{Name: "HDMI-2", Geometry: Geometry{X: 1920, Y: 0, Width: 1920, Height: 1080}},
		{Name: "DP-1", Geometry: Geometry{X: 3840, Y: 0, Width: 2560, Height: 1440}},
	}
}

func TestFilter_EmptyRequestKeepsEverything(t *testing.T) {
	screens := screensFixture()
	got, err := Filter(screens, nil)
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if len(got) != len(screens) {
		t.Fatalf("kept %d screens, want %d", len(got), len(screens))
	}
}

func TestFilter_MatchesCaseInsensitively(t *testing.T) {
	got, err := Filter(screensFixture(), []string{"hdmi-2"})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("kept %d screens, want 1", len(got))
	}
	if got[0].Name != "HDMI-2" {
		t.Fatalf("kept %q, want HDMI-2", got[0].Name)
	}
}

func TestFilter_PreservesEnumerationOrder(t *testing.T) {
	got, err := Filter(screensFixture(), []string{"dp-1", "hdmi-1"})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("kept %d screens, want 2", len(got))
	}
	if got[0].Name != "HDMI-1" || got[1].Name != "DP-1" {
		t.Fatalf("kept [%s %s], want enumeration order [HDMI-1 DP-1]", got[0].Name, got[1].Name)
	}
}

func TestFilter_NoMatchListsBothSides(t *testing.T) {
	_, err := Filter(screensFixture(), []string{"VGA-1"})
	if err == nil {
		t.Fatal("Filter() succeeded, want error")
	}
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("error type = %T, want *NoMatchError", err)
	}
	msg := err.Error()
	for _, want := range []string{"VGA-1", "HDMI-1", "HDMI-2", "DP-1", "1920x1080+1920+0"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q does not mention %q", msg, want)
		}
	}
}

type fakeWindow struct {
	name string
}

func (w *fakeWindow) Name() string            { return w.name }
func (w *fakeWindow) Show(Screen, bool) error { return nil }

func TestPair_SurplusScreensStayUnassigned(t *testing.T) {
	windows := []Window{&fakeWindow{name: "output"}}
	placements := Pair(screensFixture(), windows)
	if len(placements) != 1 {
		t.Fatalf("paired %d, want exactly 1", len(placements))
	}
	if placements[0].Screen.Name != "HDMI-1" {
		t.Fatalf("window paired with %s, want HDMI-1 (position 0)", placements[0].Screen.Name)
	}
}

func TestPair_SurplusWindowsStayUnassigned(t *testing.T) {
	windows := []Window{
		&fakeWindow{name: "a"}, &fakeWindow{name: "b"},
		&fakeWindow{name: "c"}, &fakeWindow{name: "d"},
	}
	placements := Pair(screensFixture(), windows)
	if len(placements) != 3 {
		t.Fatalf("paired %d, want 3", len(placements))
	}
	for i, pl := range placements {
		if pl.Window != windows[i] {
			t.Fatalf("placement %d holds window %q, want position-by-position pairing", i, pl.Window.Name())
		}
	}
}

func TestDPIFor(t *testing.T) {
	cases := []struct {
		name   string
		pixels int
		mm     int
		want   float64
	}{
		{"typical 96dpi-ish", 1920, 510, 95.62},
		{"hidpi", 2560, 290, 224.22},
		{"no physical size", 1920, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DPIFor(tc.pixels, tc.mm)
			if diff := got - tc.want; diff > 0.01 || diff < -0.01 {
				t.Fatalf("DPIFor(%d, %d) = %.2f, want %.2f", tc.pixels, tc.mm, got, tc.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	g := Bounds(screensFixture())
	want := Geometry{X: 0, Y: 0, Width: 6400, Height: 1440}
	if g != want {
		t.Fatalf("Bounds() = %+v, want %+v", g, want)
	}
	if (Bounds(nil) != Geometry{}) {
		t.Fatal("Bounds(nil) should be the zero geometry")
	}
}
