package main

import (
	"fmt"
	"time"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"go.uber.org/zap"

	"github.com/Faultbox/flinger/internal/config"
	"github.com/Faultbox/flinger/internal/engine/shader"
	"github.com/Faultbox/flinger/internal/engine/window"
	"github.com/Faultbox/flinger/internal/logger"
	"github.com/Faultbox/flinger/internal/renderengine"
	"github.com/Faultbox/flinger/internal/renderengine/programcache"
	"github.com/Faultbox/flinger/pkg/math"
)

func cmdCompile(cfg *config.Config, args []string) error {
	all := len(args) > 0 && args[0] == "all"

	win, err := window.New(window.Config{
		Title:  "shadercache",
		Width:  cfg.Display.Width,
		Height: cfg.Display.Height,
		Hidden: true,
		Logger: logger.Named("window"),
	})
	if err != nil {
		return err
	}
	defer win.Close()

	if err := win.MakeCurrent(); err != nil {
		return fmt.Errorf("making context current: %w", err)
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLES: %w", err)
	}
	logger.Info("GLES initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	cache := programcache.New(shader.Linker{Log: logger.Named("shader")}, programcache.Config{
		Prime:       cfg.Cache.Prime,
		SlowCompile: cfg.Cache.SlowCompile(),
		Logger:      logger.Named("programcache"),
	})

	if all {
		w, h := win.GetSize()
		start := time.Now()
		for b := programcache.Bits(0); b <= programcache.FieldsMask; b++ {
			k := programcache.Decode(b)
			if !k.Valid() {
				continue
			}
			cache.UseProgram(descriptionFor(k, int32(w), int32(h)))
		}
		logger.Info("compiled every variant", zap.Duration("elapsed", time.Since(start)))
	} else {
		w, h := win.GetSize()
		n := warmColorMatrix(cache, cfg.Display.WideGamut, int32(w), int32(h))
		logger.Info("compiled color matrix variants",
			zap.Int("programs", n),
			zap.Bool("wide_gamut", cfg.Display.WideGamut),
		)
	}

	draws, err := warmup(cache)
	if err != nil {
		return err
	}
	logger.Debug("warmup finished", zap.Int("draws", draws))

	invalid := 0
	for _, k := range cache.Keys() {
		p, _ := cache.Lookup(k)
		sp := p.(*shader.Program)
		if sp.IsValid() {
			continue
		}
		invalid++
		logger.Warn("invalid program variant", zap.Stringer("key", k), zap.Error(sp.Err()))
	}

	stats := cache.Stats()
	fmt.Printf("%d programs (%d primed in %v, %d lazy), %d invalid\n",
		stats.Size, stats.Primed, stats.PrimeDuration, stats.Lazy, invalid)
	return nil
}

// warmColorMatrix generates the color matrix variant of every cached key
// without one, in the display's gamut. It returns how many programs were
// added.
func warmColorMatrix(cache *programcache.Cache, wideGamut bool, width, height int32) int {
	before := cache.Len()
	for _, k := range cache.Keys() {
		if k.HasColorMatrix() {
			continue
		}
		k.ColorMatrix = true
		d := descriptionFor(k, width, height)
		d.SetWideGamut(wideGamut)
		cache.UseProgram(d)
	}
	return cache.Len() - before
}

// descriptionFor builds a description whose key is k.
func descriptionFor(k programcache.Key, width, height int32) *renderengine.Description {
	d := renderengine.NewDescription()
	switch k.TextureTarget() {
	case programcache.TextureExternal:
		d.SetTexture(renderengine.NewTexture(0, renderengine.TargetTextureExternal))
	case programcache.Texture2D:
		tex := renderengine.NewTexture(0, renderengine.TargetTexture2D)
		tex.Matrix = math.FlipY()
		d.SetTexture(tex)
	}
	if k.HasPlaneAlpha() {
		d.SetPlaneAlpha(0.5)
	}
	if k.HasColorMatrix() {
		d.SetColorMatrix(math.Saturation(0.5))
	}
	d.SetOpaque(k.IsOpaque())
	d.SetPremultipliedAlpha(k.IsPremultiplied())
	d.SetWideGamut(k.IsWideGamut())
	d.SetBlur(k.IsBlur())
	d.SetFirstApp(k.FirstApp)
	d.SetBlurNum(1)
	d.SetBlurBounds(0, 1, 0, 1)
	d.SetDisplaySize(width, height)
	d.SetProjectionMatrix(math.Ortho(0, float32(width), float32(height), 0, 0, 1))
	return d
}
