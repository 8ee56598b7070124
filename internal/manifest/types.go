package manifest

// Manifest is the top-level record of a smartsprites build.
type Manifest struct {
	Version     int               `json:"version"`
	GeneratedAt string            `json:"generated_at"`
	Profile     string            `json:"profile"`
	BasePath    string            `json:"base_path"`
	BuildInfo   *BuildInfo        `json:"build_info,omitempty"`
	Sprites     map[string]Sprite `json:"sprites"`
	CSS         []string          `json:"css"` // rewritten stylesheets, relative to base_path
	Stats       Stats             `json:"stats"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers   int    `json:"workers"`
	PNGDepth  string `json:"png_depth"`
	Legacy    bool   `json:"legacy"`
	Quantizer string `json:"quantizer"`
	Warnings  int    `json:"warnings"`
}

// Sprite describes one generated sprite image.
type Sprite struct {
	Path   string  `json:"path"` // relative to base_path
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	Format string  `json:"format"`
	Layout string  `json:"layout"`
	// Indexed is set when the sprite was written with a palette.
	Indexed bool     `json:"indexed"`
	Lossy   bool     `json:"lossy,omitempty"` // quantized with quality loss
	Size    int64    `json:"size"`            // bytes on disk
	Hash    string   `json:"hash"`            // first 16 hex chars of xxhash64
	Legacy  *Variant `json:"legacy,omitempty"`
	Images  []Image  `json:"images"`
}

// Variant is an additional encoding of a sprite.
type Variant struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Hash string `json:"hash"`
}

// Image is one individual image placed into a sprite.
type Image struct {
	Path     string `json:"path"` // relative to base_path
	CSS      string `json:"css"`
	Line     int    `json:"line"` // one-based
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"` // source bytes on disk
	Offset   int    `json:"offset"`
	Position string `json:"position"`
	Shared   bool   `json:"shared,omitempty"` // reuses the slot of an identical image
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalSprites     int   `json:"total_sprites"`
	TotalImages      int   `json:"total_images"`
	SharedImages     int   `json:"shared_images,omitempty"`
	LegacyVariants   int   `json:"legacy_variants,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest file written next to the sprites.
const FileName = "smartsprites.manifest.json"
