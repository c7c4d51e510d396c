package programcache

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/flinger/internal/renderengine"
	"github.com/Faultbox/flinger/pkg/math"
)

func TestPrimeCacheCoverage(t *testing.T) {
	linker := &fakeLinker{}
	c := New(linker, Config{Prime: true})

	// 3 texture targets x opacity x plane alpha x blend
	if c.Len() != 24 {
		t.Fatalf("expected 24 primed programs, got %d", c.Len())
	}
	if linker.links != 24 {
		t.Errorf("expected 24 links, got %d", linker.links)
	}

	for _, tex := range []TextureTarget{TextureOff, TextureExternal, Texture2D} {
		for _, opaque := range []bool{false, true} {
			for _, planeAlpha := range []bool{false, true} {
				for _, premul := range []bool{false, true} {
					k := Key{Texture: tex, Opaque: opaque, PlaneAlpha: planeAlpha, Premultiplied: premul}
					if _, ok := c.Lookup(k); !ok {
						t.Errorf("%v not primed", k)
					}
				}
			}
		}
	}

	for _, k := range []Key{
		{ColorMatrix: true},
		{ColorMatrix: true, WideGamut: true},
		{Texture: Texture2D, Blur: true},
		{FirstApp: true},
	} {
		if _, ok := c.Lookup(k); ok {
			t.Errorf("%v should not be primed", k)
		}
	}

	stats := c.Stats()
	if stats.Primed != 24 || stats.Lazy != 0 || stats.Size != 24 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestPrimeCacheSkipsCached(t *testing.T) {
	linker := &fakeLinker{}
	c := New(linker, Config{Prime: true})

	n, _ := c.PrimeCache()
	if n != 0 {
		t.Errorf("second prime generated %d programs", n)
	}
	if linker.links != 24 {
		t.Errorf("expected 24 links, got %d", linker.links)
	}
}

func TestPrimeCacheLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	New(&fakeLinker{}, Config{Prime: true, Logger: zap.New(core)})

	entries := logs.FilterMessage("shader cache generated").All()
	if len(entries) != 1 {
		t.Fatalf("expected one priming log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["shaders"]; got != int64(24) {
		t.Errorf("expected shaders=24, got %v", got)
	}
}

func TestUseProgramGeneratesOnce(t *testing.T) {
	linker := &fakeLinker{}
	c := New(linker, Config{})

	d := renderengine.NewDescription()
	d.SetPremultipliedAlpha(false)
	d.SetPlaneAlpha(1)
	d.SetColorMatrix(math.Identity())

	if !c.UseProgram(d) {
		t.Fatal("UseProgram should succeed for a valid program")
	}
	if linker.links != 1 {
		t.Errorf("expected 1 generation, got %d", linker.links)
	}

	same := renderengine.NewDescription()
	if !c.UseProgram(same) {
		t.Fatal("UseProgram should succeed on a cache hit")
	}
	if linker.links != 1 {
		t.Errorf("cache hit should not regenerate, got %d links", linker.links)
	}

	k := Key{Texture: TextureOff, Opaque: true}
	p1, ok := c.Lookup(k)
	if !ok {
		t.Fatalf("%v missing after UseProgram", k)
	}
	p2 := c.program(k)
	if p1 != p2 {
		t.Error("repeated lookups should return the same program instance")
	}
	if p1.(*fakeProgram).uses != 2 {
		t.Errorf("expected program to be used twice, got %d", p1.(*fakeProgram).uses)
	}
	if c.Stats().Lazy != 1 {
		t.Errorf("expected 1 lazy generation, got %d", c.Stats().Lazy)
	}
}

func TestUseProgramInvalidLink(t *testing.T) {
	linker := &fakeLinker{fail: "colorMatrix"}
	c := New(linker, Config{})

	d := renderengine.NewDescription()
	d.SetColorMatrix(math.Saturation(0.5))

	for i := 0; i < 3; i++ {
		if c.UseProgram(d) {
			t.Fatal("UseProgram should report failure for an invalid program")
		}
	}
	if linker.links != 1 {
		t.Errorf("failed link should not be retried, got %d links", linker.links)
	}

	p, _ := c.Lookup(ComputeKey(d))
	fp := p.(*fakeProgram)
	if fp.uses != 0 || len(fp.values) != 0 {
		t.Error("invalid program should never be used or receive uniforms")
	}
}

func TestUseProgramUniforms(t *testing.T) {
	c := New(&fakeLinker{}, Config{})

	d := renderengine.NewDescription()
	tex := renderengine.NewTexture(4, renderengine.TargetTexture2D)
	tex.Matrix = math.Scale(1, -1, 1)
	d.SetTexture(tex)
	d.SetOpaque(false)
	d.SetPlaneAlpha(0.5)
	d.SetColorMatrix(math.Saturation(0))
	d.SetProjectionMatrix(math.Ortho(0, 100, 100, 0, 0, 1))
	d.SetDisplaySize(1080, 2340)
	d.SetBlur(true)
	d.SetBlurBounds(0.1, 0.9, 0.2, 0.8)
	d.SetBlurNum(7)

	if !c.UseProgram(d) {
		t.Fatal("UseProgram failed")
	}
	p, _ := c.Lookup(ComputeKey(d))
	v := p.(*fakeProgram).values

	checks := map[string]any{
		UniformProjection:  math.Ortho(0, 100, 100, 0, 0, 1),
		UniformTexture:     math.Scale(1, -1, 1),
		UniformSampler:     int32(0),
		UniformAlphaPlane:  float32(0.5),
		UniformColorMatrix: math.Saturation(0),
		UniformWidth:       int32(1080),
		UniformHeight:      int32(2340),
		UniformSX:          float32(0.1),
		UniformBX:          float32(0.9),
		UniformSY:          float32(0.2),
		UniformBY:          float32(0.8),
		UniformIterator:    float32(5),
		UniformSaturation:  float32(2),
	}
	for name, want := range checks {
		if v[name] != want {
			t.Errorf("%s: got %v, want %v", name, v[name], want)
		}
	}
	if _, ok := v[UniformColor]; ok {
		t.Error("flat color should not be bound for a textured draw")
	}
}

func TestUseProgramFlatColor(t *testing.T) {
	c := New(&fakeLinker{}, Config{})

	d := renderengine.NewDescription()
	d.SetColor(0.1, 0.2, 0.3, 1)
	d.SetDisplaySize(640, 480)
	c.UseProgram(d)

	p, _ := c.Lookup(ComputeKey(d))
	v := p.(*fakeProgram).values
	if v[UniformColor] != [4]float32{0.1, 0.2, 0.3, 1} {
		t.Errorf("color: got %v", v[UniformColor])
	}
	for _, name := range []string{UniformSampler, UniformAlphaPlane, UniformColorMatrix, UniformIterator, UniformSX} {
		if _, ok := v[name]; ok {
			t.Errorf("%s should not be bound", name)
		}
	}
}

func TestBlurTap(t *testing.T) {
	tests := []struct {
		n          int
		iterator   float32
		saturation float32
		ok         bool
	}{
		{0, 0, 0, false},
		{1, 0, 1, true},
		{2, 1, 1, true},
		{3, 2, 1, true},
		{4, 3, 1, true},
		{5, 4, 1, true},
		{6, 4, 1, true},
		{7, 5, 2, true},
		{8, 0, 0, false},
	}

	for _, tt := range tests {
		it, sat, ok := BlurTap(tt.n)
		if it != tt.iterator || sat != tt.saturation || ok != tt.ok {
			t.Errorf("BlurTap(%d) = (%v, %v, %v), want (%v, %v, %v)",
				tt.n, it, sat, ok, tt.iterator, tt.saturation, tt.ok)
		}
	}
}

func TestUseProgramBlurOutOfRange(t *testing.T) {
	c := New(&fakeLinker{}, Config{})

	d := renderengine.NewDescription()
	d.SetTexture(renderengine.NewTexture(1, renderengine.TargetTexture2D))
	d.SetBlur(true)
	d.SetBlurNum(9)
	c.UseProgram(d)

	p, _ := c.Lookup(ComputeKey(d))
	v := p.(*fakeProgram).values
	if _, ok := v[UniformIterator]; ok {
		t.Error("iterator should not be written for tap 9")
	}
	if _, ok := v[UniformSX]; !ok {
		t.Error("blur window should still be written")
	}
}

func TestChangeUniform(t *testing.T) {
	linker := &fakeLinker{}
	c := New(linker, Config{})

	d := renderengine.NewDescription()
	d.SetTexture(renderengine.NewTexture(1, renderengine.TargetTexture2D))
	d.SetBlur(true)
	d.SetBlurNum(4)

	c.ChangeUniform(d)
	if linker.links != 0 || c.Len() != 0 {
		t.Fatal("ChangeUniform should not generate programs")
	}

	c.UseProgram(d)
	p, _ := c.Lookup(ComputeKey(d))
	v := p.(*fakeProgram).values

	c.ChangeUniform(d)
	if v[UniformBlurNum1] != int32(4) || v[UniformBlurNum2] != int32(0) {
		t.Errorf("even tap: blurnum1=%v blurnum2=%v", v[UniformBlurNum1], v[UniformBlurNum2])
	}

	d.SetBlurNum(3)
	c.ChangeUniform(d)
	if v[UniformBlurNum1] != int32(0) || v[UniformBlurNum2] != int32(3) {
		t.Errorf("odd tap: blurnum1=%v blurnum2=%v", v[UniformBlurNum1], v[UniformBlurNum2])
	}
	if linker.links != 1 {
		t.Errorf("expected 1 link, got %d", linker.links)
	}
}

func TestChangeUniformIgnoresNonBlur(t *testing.T) {
	c := New(&fakeLinker{}, Config{Prime: true})

	d := renderengine.NewDescription()
	d.SetBlurNum(2)
	c.ChangeUniform(d)

	p, _ := c.Lookup(ComputeKey(d))
	if _, ok := p.(*fakeProgram).values[UniformBlurNum1]; ok {
		t.Error("non-blur program should not receive blur numbers")
	}
}

func TestSlowCompileWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := New(&fakeLinker{}, Config{SlowCompile: time.Nanosecond, Logger: zap.New(core)})

	c.UseProgram(renderengine.NewDescription())
	// a fake link can finish within the clock resolution
	if n := logs.FilterMessage("slow program generation").Len(); n > 1 {
		t.Errorf("expected at most one warning, got %d", n)
	}
}

func TestKeysSorted(t *testing.T) {
	c := New(&fakeLinker{}, Config{Prime: true})

	keys := c.Keys()
	if len(keys) != c.Len() {
		t.Fatalf("Keys: got %d, want %d", len(keys), c.Len())
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1].Encode() >= keys[i].Encode() {
			t.Errorf("keys out of order at %d: %v >= %v", i, keys[i-1], keys[i])
		}
	}
}
