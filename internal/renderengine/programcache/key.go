package programcache

import (
	"fmt"
	"strings"

	"github.com/Faultbox/flinger/internal/renderengine"
)

// Bits is the packed form of a Key. Each field owns a disjoint bit range.
type Bits uint32

// Field masks and values of the packed key.
const (
	BlendMask          Bits = 1 << 0
	BlendNormal        Bits = 0
	BlendPremultiplied Bits = 1 << 0

	OpacityMask        Bits = 1 << 1
	OpacityTranslucent Bits = 0
	OpacityOpaque      Bits = 1 << 1

	PlaneAlphaMask  Bits = 1 << 2
	PlaneAlphaEqOne Bits = 0
	PlaneAlphaLtOne Bits = 1 << 2

	TextureMask    Bits = 3 << textureShift
	TextureOffBits Bits = Bits(TextureOff) << textureShift
	TextureExtBits Bits = Bits(TextureExternal) << textureShift
	Texture2DBits  Bits = Bits(Texture2D) << textureShift

	ColorMatrixMask Bits = 1 << 5
	ColorMatrixOff  Bits = 0
	ColorMatrixOn   Bits = 1 << 5

	WideGamutMask Bits = 1 << 6
	WideGamutOff  Bits = 0
	WideGamutOn   Bits = 1 << 6

	BlurMask Bits = 1 << 7
	BlurOff  Bits = 0
	BlurOn   Bits = 1 << 7

	FirstAppMask  Bits = 1 << 8
	FirstAppFalse Bits = 0
	FirstAppTrue  Bits = 1 << 8

	// FieldsMask covers every field of the key.
	FieldsMask = BlendMask | OpacityMask | PlaneAlphaMask | TextureMask |
		ColorMatrixMask | WideGamutMask | BlurMask | FirstAppMask
)

const textureShift = 3

// Set clears the bits of mask and stores value in their place. value must lie
// within mask; builds with the programcache_debug tag panic otherwise.
func (b Bits) Set(mask, value Bits) Bits {
	assertf(value&^mask == 0, "programcache: value %#x outside mask %#x", uint32(value), uint32(mask))
	return b&^mask | value&mask
}

// TextureTarget is the sampler kind compiled into a program.
type TextureTarget uint8

const (
	TextureOff TextureTarget = iota
	TextureExternal
	Texture2D
)

func (t TextureTarget) String() string {
	switch t {
	case TextureOff:
		return "off"
	case TextureExternal:
		return "external"
	case Texture2D:
		return "2d"
	default:
		return fmt.Sprintf("TextureTarget(%d)", uint8(t))
	}
}

// Key is the set of description fields that change the text of a generated
// shader. Scalar per-draw values never appear here; they are bound as
// uniforms. Key is comparable but the cache always indexes by Encode().
type Key struct {
	Texture       TextureTarget
	Opaque        bool
	PlaneAlpha    bool // plane alpha < 1
	Premultiplied bool
	ColorMatrix   bool
	WideGamut     bool
	Blur          bool
	// FirstApp is carried for key compatibility. No generator reads it.
	FirstApp bool
}

// ComputeKey derives the key for d.
func ComputeKey(d *renderengine.Description) Key {
	return Key{
		Texture:       textureTarget(d),
		PlaneAlpha:    d.PlaneAlpha() < 1,
		Premultiplied: d.Premultiplied(),
		Opaque:        d.Opaque(),
		ColorMatrix:   d.ColorMatrixEnabled(),
		WideGamut:     d.WideGamut(),
		Blur:          d.Blur(),
		FirstApp:      d.FirstApp(),
	}
}

// textureTarget classifies the bound texture. Unknown GL targets shade as
// untextured.
func textureTarget(d *renderengine.Description) TextureTarget {
	if !d.TextureEnabled() {
		return TextureOff
	}
	switch d.Texture().Target {
	case renderengine.TargetTextureExternal:
		return TextureExternal
	case renderengine.TargetTexture2D:
		return Texture2D
	default:
		return TextureOff
	}
}

// Encode packs k into its canonical bit form.
func (k Key) Encode() Bits {
	var b Bits
	return b.
		Set(TextureMask, Bits(k.Texture)<<textureShift&TextureMask).
		Set(PlaneAlphaMask, pick(k.PlaneAlpha, PlaneAlphaLtOne, PlaneAlphaEqOne)).
		Set(BlendMask, pick(k.Premultiplied, BlendPremultiplied, BlendNormal)).
		Set(OpacityMask, pick(k.Opaque, OpacityOpaque, OpacityTranslucent)).
		Set(ColorMatrixMask, pick(k.ColorMatrix, ColorMatrixOn, ColorMatrixOff)).
		Set(WideGamutMask, pick(k.WideGamut, WideGamutOn, WideGamutOff)).
		Set(BlurMask, pick(k.Blur, BlurOn, BlurOff)).
		Set(FirstAppMask, pick(k.FirstApp, FirstAppTrue, FirstAppFalse))
}

// Decode unpacks b. Bits outside the known fields are ignored.
func Decode(b Bits) Key {
	return Key{
		Texture:       TextureTarget((b & TextureMask) >> textureShift),
		Opaque:        b&OpacityMask == OpacityOpaque,
		PlaneAlpha:    b&PlaneAlphaMask == PlaneAlphaLtOne,
		Premultiplied: b&BlendMask == BlendPremultiplied,
		ColorMatrix:   b&ColorMatrixMask == ColorMatrixOn,
		WideGamut:     b&WideGamutMask == WideGamutOn,
		Blur:          b&BlurMask == BlurOn,
		FirstApp:      b&FirstAppMask == FirstAppTrue,
	}
}

func pick(cond bool, on, off Bits) Bits {
	if cond {
		return on
	}
	return off
}

// Valid reports whether the texture field holds a known target.
func (k Key) Valid() bool {
	return k.Texture <= Texture2D
}

func (k Key) IsTexturing() bool { return k.Texture != TextureOff }
func (k Key) TextureTarget() TextureTarget { return k.Texture }
func (k Key) HasPlaneAlpha() bool { return k.PlaneAlpha }
func (k Key) IsPremultiplied() bool { return k.Premultiplied }
func (k Key) IsOpaque() bool { return k.Opaque }
func (k Key) HasColorMatrix() bool { return k.ColorMatrix }
func (k Key) IsWideGamut() bool { return k.WideGamut }
func (k Key) IsBlur() bool { return k.Blur }

// String renders k as "0x012[texture=2d opaque]".
func (k Key) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "0x%03x[texture=%s", uint32(k.Encode()), k.Texture)
	flags := []struct {
		on   bool
		name string
	}{
		{k.Opaque, "opaque"},
		{k.PlaneAlpha, "plane-alpha"},
		{k.Premultiplied, "premultiplied"},
		{k.ColorMatrix, "color-matrix"},
		{k.WideGamut, "wide-gamut"},
		{k.Blur, "blur"},
		{k.FirstApp, "first-app"},
	}
	for _, f := range flags {
		if f.on {
			sb.WriteString(" " + f.name)
		}
	}
	sb.WriteString("]")
	return sb.String()
}
