package scene

import (
	"fmt"
	"sort"
)

// Factory builds a scene for the given settings
type Factory func(settings Settings) (*Scene, error)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	Name        string
	Description string
	New         Factory
}

var registry = map[string]SceneInfo{
	"cornell": {
		Name:        "cornell",
		Description: "Cornell box with a ceiling area light, a glass sphere and a principled box",
		New:         NewCornellScene,
	},
	"portal": {
		Name:        "portal",
		Description: "Two linked portal quads showing an emitter placed out of direct view",
		New:         NewPortalScene,
	},
	"materials": {
		Name:        "materials",
		Description: "Grid of principled spheres on a checker floor under a sky",
		New:         NewMaterialsScene,
	},
	"cutout": {
		Name:        "cutout",
		Description: "Alpha-textured quad in front of an emitter",
		New:         NewCutoutScene,
	},
}

// Names returns the built-in scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the built-in scene registered under name
func Lookup(name string) (SceneInfo, bool) {
	info, ok := registry[name]
	return info, ok
}

// New builds the named built-in scene
func New(name string, settings Settings) (*Scene, error) {
	info, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	return info.New(settings)
}
