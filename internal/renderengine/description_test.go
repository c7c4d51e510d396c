package renderengine

import (
	"testing"

	"github.com/Faultbox/flinger/pkg/math"
)

func TestNewDescriptionDefaults(t *testing.T) {
	d := NewDescription()

	if d.PlaneAlpha() != 1 {
		t.Errorf("expected plane alpha 1, got %f", d.PlaneAlpha())
	}
	if !d.Opaque() {
		t.Error("expected opaque by default")
	}
	if d.Premultiplied() {
		t.Error("expected non-premultiplied by default")
	}
	if d.TextureEnabled() {
		t.Error("expected texturing disabled by default")
	}
	if d.ColorMatrixEnabled() {
		t.Error("expected color matrix disabled by default")
	}
	if !d.ColorMatrix().IsIdentity() {
		t.Error("expected identity color matrix by default")
	}
}

func TestSetColorMatrix(t *testing.T) {
	d := NewDescription()

	d.SetColorMatrix(math.Saturation(0.5))
	if !d.ColorMatrixEnabled() {
		t.Error("non-identity matrix should enable the color matrix")
	}

	d.SetColorMatrix(math.Identity())
	if d.ColorMatrixEnabled() {
		t.Error("identity matrix should disable the color matrix")
	}
}

func TestSetTexture(t *testing.T) {
	d := NewDescription()
	d.SetTexture(NewTexture(7, TargetTextureExternal))

	if !d.TextureEnabled() {
		t.Fatal("SetTexture should enable texturing")
	}
	if d.Texture().Target != TargetTextureExternal {
		t.Errorf("expected external target, got %#x", d.Texture().Target)
	}

	d.DisableTexture()
	if d.TextureEnabled() {
		t.Error("DisableTexture should disable texturing")
	}
	if d.Texture().Name != 7 {
		t.Error("DisableTexture should keep the bound texture")
	}
}

func TestSetPlaneAlphaClamps(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{1.5, 1},
	}

	d := NewDescription()
	for _, tt := range tests {
		d.SetPlaneAlpha(tt.in)
		if d.PlaneAlpha() != tt.want {
			t.Errorf("SetPlaneAlpha(%f): got %f, want %f", tt.in, d.PlaneAlpha(), tt.want)
		}
	}
}

func TestSetBlurRegion(t *testing.T) {
	d := NewDescription()
	d.SetBlurRegion(300, 150, 100, 50, 400, 200)

	sx, bx, sy, by := d.BlurBounds()
	if sx != 0.25 || bx != 0.75 {
		t.Errorf("x bounds: got (%f, %f), want (0.25, 0.75)", sx, bx)
	}
	if sy != 0.25 || by != 0.75 {
		t.Errorf("y bounds: got (%f, %f), want (0.25, 0.75)", sy, by)
	}

	d.SetBlurRegion(0, 0, 10, 10, 0, 0)
	sx, bx, sy, by = d.BlurBounds()
	if sx != 0 || bx != 1 || sy != 0 || by != 1 {
		t.Errorf("empty texture should select the full window, got (%f, %f, %f, %f)", sx, bx, sy, by)
	}
}
