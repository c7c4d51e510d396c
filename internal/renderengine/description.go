// Package renderengine holds the per-draw state the compositor hands to the
// program cache.
package renderengine

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/flinger/pkg/math"
)

// GL texture targets a Texture may be bound to.
const (
	TargetTexture2D       uint32 = 0x0DE1 // GL_TEXTURE_2D
	TargetTextureExternal uint32 = 0x8D65 // GL_TEXTURE_EXTERNAL_OES
)

// Texture is a bound texture as seen by a draw.
type Texture struct {
	Name   uint32
	Target uint32
	Matrix math.Mat4
}

// NewTexture returns a texture bound to target with an identity texture matrix.
func NewTexture(name, target uint32) Texture {
	return Texture{Name: name, Target: target, Matrix: math.Identity()}
}

// Description describes how the next draw should be shaded.
// The zero value is not ready for use; call NewDescription.
type Description struct {
	planeAlpha     float32
	premultiplied  bool
	opaque         bool
	textureEnabled bool
	texture        Texture
	color          [4]float32
	projection     math.Mat4

	colorMatrix        math.Mat4
	colorMatrixEnabled bool
	wideGamut          bool

	blur     bool
	firstApp bool
	blurNum  int
	// blur sampling window in texture coordinates
	sx, bx, sy, by float32

	width, height int32
}

// NewDescription returns an opaque, untextured description with full plane
// alpha and identity matrices.
func NewDescription() *Description {
	return &Description{
		planeAlpha:  1,
		opaque:      true,
		projection:  math.Identity(),
		colorMatrix: math.Identity(),
		texture:     Texture{Matrix: math.Identity()},
	}
}

// SetPlaneAlpha sets the layer opacity, clamped to [0, 1].
func (d *Description) SetPlaneAlpha(alpha float32) {
	d.planeAlpha = clamp01(alpha)
}

func (d *Description) SetPremultipliedAlpha(premultiplied bool) { d.premultiplied = premultiplied }
func (d *Description) SetOpaque(opaque bool) { d.opaque = opaque }
func (d *Description) SetWideGamut(wideGamut bool) { d.wideGamut = wideGamut }
func (d *Description) SetBlur(blur bool) { d.blur = blur }
func (d *Description) SetFirstApp(firstApp bool) { d.firstApp = firstApp }

// SetTexture binds tex and enables texturing.
func (d *Description) SetTexture(tex Texture) {
	d.texture = tex
	d.textureEnabled = true
}

// DisableTexture switches the draw to flat color shading.
func (d *Description) DisableTexture() {
	d.textureEnabled = false
}

// SetColor sets the flat color used when texturing is disabled.
func (d *Description) SetColor(r, g, b, a float32) {
	d.color = [4]float32{r, g, b, a}
}

func (d *Description) SetProjectionMatrix(m math.Mat4) { d.projection = m }

// SetColorMatrix sets the color transform. The transform is only compiled
// into the shader when m differs from identity.
func (d *Description) SetColorMatrix(m math.Mat4) {
	d.colorMatrix = m
	d.colorMatrixEnabled = !m.IsIdentity()
}

// SetBlurNum selects the blur tap index (1-7).
func (d *Description) SetBlurNum(n int) { d.blurNum = n }

// SetBlurBounds sets the blur sampling window in texture coordinates.
func (d *Description) SetBlurBounds(sx, bx, sy, by float32) {
	d.sx, d.bx = clamp01(sx), clamp01(bx)
	d.sy, d.by = clamp01(sy), clamp01(by)
}

// SetBlurRegion sets the blur sampling window from a pixel rectangle inside
// a texture of texW x texH pixels.
func (d *Description) SetBlurRegion(left, top, right, bottom, texW, texH float32) {
	if texW <= 0 || texH <= 0 {
		d.SetBlurBounds(0, 1, 0, 1)
		return
	}
	d.SetBlurBounds(
		math32.Min(left, right)/texW,
		math32.Max(left, right)/texW,
		math32.Min(top, bottom)/texH,
		math32.Max(top, bottom)/texH,
	)
}

// SetDisplaySize sets the destination size in pixels.
func (d *Description) SetDisplaySize(width, height int32) {
	d.width, d.height = width, height
}

func (d *Description) PlaneAlpha() float32 { return d.planeAlpha }
func (d *Description) Premultiplied() bool { return d.premultiplied }
func (d *Description) Opaque() bool { return d.opaque }
func (d *Description) TextureEnabled() bool { return d.textureEnabled }
func (d *Description) Texture() Texture { return d.texture }
func (d *Description) Color() [4]float32 { return d.color }
func (d *Description) ProjectionMatrix() math.Mat4 { return d.projection }
func (d *Description) ColorMatrix() math.Mat4 { return d.colorMatrix }
func (d *Description) ColorMatrixEnabled() bool { return d.colorMatrixEnabled }
func (d *Description) WideGamut() bool { return d.wideGamut }
func (d *Description) Blur() bool { return d.blur }
func (d *Description) FirstApp() bool { return d.firstApp }
func (d *Description) BlurNum() int { return d.blurNum }
func (d *Description) DisplaySize() (w, h int32) { return d.width, d.height }
func (d *Description) BlurBounds() (sx, bx, sy, by float32) {
	return d.sx, d.bx, d.sy, d.by
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
