package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/hazendaz/smartsprites-sub000/internal/directive"
	"github.com/hazendaz/smartsprites-sub000/internal/encoder"
	"github.com/hazendaz/smartsprites-sub000/internal/manifest"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

// Pipeline orchestrates sprite building.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
	warnings *message.Counter
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	counter := &message.Counter{}
	cfg.Log = cfg.Log.Tee(counter)
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(cfg.Profile.Quality),
		warnings: counter,
	}
}

// Run executes the full build and returns the manifest describing it.
// Problems with individual directives or images are reported through the
// configured log; Run only fails when no output could be produced.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	start := p.cfg.now()
	log := p.cfg.Log

	// Step 1: find stylesheets.
	files := p.cfg.CSSFiles
	if len(files) == 0 {
		var err error
		files, err = ScanCSS(p.cfg.RootDir)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no css files found in %s", p.cfg.RootDir)
	}

	// Step 2: read directives.
	coll, err := directive.Collect(files, log)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	// Step 3: build referenced sprites in parallel.
	var ids []string
	for _, id := range coll.SpriteOrder {
		if len(coll.References[id]) > 0 {
			ids = append(ids, id)
		}
	}
	results := make([]processResult, len(ids))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, id := range ids {
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = processSprite(coll.Sprites[id], coll.References[id], p.cfg, p.registry)
		}(i, id)
	}
	wg.Wait()

	// Step 4: collect placements and the manifest.
	m := manifest.New(p.cfg.Profile.Name)
	m.BasePath = p.cfg.basePath()
	placements := make(map[string]map[int]placement)
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if !r.built {
			continue
		}
		m.Sprites[r.id] = r.sprite
		for k, pl := range r.placements {
			if placements[k.file] == nil {
				placements[k.file] = make(map[int]placement)
			}
			placements[k.file][k.line] = pl
		}
	}
	if len(errs) > 0 && len(errs) == len(ids) {
		return nil, fmt.Errorf("all %d sprites failed: %w", len(errs), errs[0])
	}

	// Step 5: rewrite every stylesheet that carried a directive.
	directiveLines := make(map[string]map[int]bool)
	for _, file := range coll.ImageFiles {
		directiveLines[file] = make(map[int]bool)
	}
	for _, occ := range coll.Images {
		directiveLines[occ.File][occ.Line] = true
	}
	var rewriteErrs []error
	for _, file := range files {
		_, hasImages := directiveLines[file]
		if !hasImages && placements[file] == nil {
			continue
		}
		out, err := rewriteCSS(file, directiveLines[file], placements[file], p.cfg)
		if err != nil {
			rewriteErrs = append(rewriteErrs, err)
			continue
		}
		m.CSS = append(m.CSS, p.cfg.manifestPath(out))
	}
	if len(rewriteErrs) > 0 && len(m.CSS) == 0 {
		return nil, fmt.Errorf("all %d stylesheets failed: %w", len(rewriteErrs), rewriteErrs[0])
	}
	sort.Strings(m.CSS)

	m.BuildInfo = &manifest.BuildInfo{
		Workers:   p.cfg.Workers,
		PNGDepth:  p.cfg.Profile.PNGDepth.String(),
		Legacy:    p.cfg.Profile.Legacy,
		Quantizer: p.cfg.Profile.Quantizer.String(),
	}
	m.ComputeStats()

	elapsed := p.cfg.now().Sub(start).Milliseconds()
	if n := p.warnings.Count(message.Warning); n > 0 {
		log.Log(message.Status, message.ProcessingCompletedWithWarnings, elapsed, n)
	} else {
		log.Log(message.Status, message.ProcessingCompleted, elapsed)
	}
	m.BuildInfo.Warnings = p.warnings.Count(message.Warning)
	return m, nil
}
