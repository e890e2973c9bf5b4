package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlassPaneName is the scene child every scene must provide: the
// input-blocking pane raised over client windows.
const GlassPaneName = "glassPane"

// Object kinds.
const (
	KindWindow = "window"
	KindPane   = "pane"
	KindItem   = "item"
)

// Natural size for window children that declare none.
const (
	defaultWindowWidth  = 1024
	defaultWindowHeight = 640
)

// DefaultFileName is the manifest looked up inside the config directory.
const DefaultFileName = "scene.yaml"

//go:embed default.yaml
var defaultScene []byte

// Object is one named node in the scene tree.
type Object struct {
	Name     string    `yaml:"name"`
	Kind     string    `yaml:"kind"`
	Title    string    `yaml:"title,omitempty"`
	Width    int       `yaml:"width,omitempty"`
	Height   int       `yaml:"height,omitempty"`
	Children []*Object `yaml:"children,omitempty"`
}

// Root is a loaded scene: a named root object with discoverable children.
type Root struct {
	Name     string    `yaml:"name"`
	Children []*Object `yaml:"children"`
}

// Load reads the scene manifest from the config directory. A missing file
// falls back to the built-in default scene; a present but broken one is an
// error, silently replacing a user's scene would be worse.
func Load(dir, name string) (*Root, error) {
	if name == "" {
		name = DefaultFileName
	}
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Parse(defaultScene)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return root, nil
}

// Parse decodes and validates a scene manifest.
func Parse(data []byte) (*Root, error) {
	var root Root
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := root.validate(); err != nil {
		return nil, err
	}
	root.normalize()
	return &root, nil
}

func (r *Root) validate() error {
	var walk func(objs []*Object) error
	walk = func(objs []*Object) error {
		for _, obj := range objs {
			if obj.Name == "" {
				return errors.New("scene object without a name")
			}
			if err := walk(obj.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(r.Children); err != nil {
		return err
	}
	pane := r.Child(GlassPaneName)
	if pane == nil {
		return fmt.Errorf("scene has no %q child", GlassPaneName)
	}
	if pane.Kind != KindPane {
		return fmt.Errorf("scene child %q has kind %q, want %q", GlassPaneName, pane.Kind, KindPane)
	}
	return nil
}

func (r *Root) normalize() {
	for _, obj := range r.Windows() {
		if obj.Title == "" {
			obj.Title = obj.Name
		}
		if obj.Width <= 0 {
			obj.Width = defaultWindowWidth
		}
		if obj.Height <= 0 {
			obj.Height = defaultWindowHeight
		}
	}
}

// Child returns the named descendant, depth-first, or nil.
func (r *Root) Child(name string) *Object {
	var find func(objs []*Object) *Object
	find = func(objs []*Object) *Object {
		for _, obj := range objs {
			if obj.Name == name {
				return obj
			}
			if found := find(obj.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return find(r.Children)
}

// Windows returns the top-level window children in declaration order.
func (r *Root) Windows() []*Object {
	var windows []*Object
	for _, obj := range r.Children {
		if obj.Kind == KindWindow {
			windows = append(windows, obj)
		}
	}
	return windows
}
