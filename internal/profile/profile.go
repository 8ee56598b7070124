package profile

import (
	"github.com/hazendaz/smartsprites-sub000/internal/colorreduce"
)

// Profile defines sprite rendering parameters for a target audience.
type Profile struct {
	Name      string
	PNGDepth  colorreduce.Depth     // color depth of png sprites
	Legacy    bool                  // write indexed-alpha variants for old browsers
	Quantizer colorreduce.Quantizer // palette builder for lossy reduction
	CSSSuffix string                // appended to rewritten CSS file names
	Quality   int                   // jpg sprite quality 1-100
}

// Built-in profiles.
var profiles = map[string]Profile{
	"default": {
		Name:      "default",
		PNGDepth:  colorreduce.Auto,
		Quantizer: colorreduce.Octree,
		CSSSuffix: "-sprite",
		Quality:   90,
	},
	"legacy-ie6": {
		Name:      "legacy-ie6",
		PNGDepth:  colorreduce.Auto,
		Legacy:    true,
		Quantizer: colorreduce.Octree,
		CSSSuffix: "-sprite",
		Quality:   90,
	},
	"truecolor": {
		Name:      "truecolor",
		PNGDepth:  colorreduce.Direct,
		Quantizer: colorreduce.Octree,
		CSSSuffix: "-sprite",
		Quality:   95,
	},
	"indexed": {
		Name:      "indexed",
		PNGDepth:  colorreduce.Indexed,
		Quantizer: colorreduce.Octree,
		CSSSuffix: "-sprite",
		Quality:   82,
	},
}

// Get returns a profile by name. Falls back to default if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["default"]
	p.Name = name // preserve requested name
	return p
}

// Names returns the built-in profile names in a stable order.
func Names() []string {
	return []string{"default", "legacy-ie6", "truecolor", "indexed"}
}
