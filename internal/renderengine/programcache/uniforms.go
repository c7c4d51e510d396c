package programcache

import "github.com/Faultbox/flinger/internal/renderengine"

// blurTap is the uniform pair a blur tap index selects.
type blurTap struct {
	iterator   float32
	saturation float32
}

// blurTaps is indexed by tap number; entry 0 is unused. Taps 5 and 6 share
// an iterator and tap 7 also boosts saturation.
var blurTaps = [...]blurTap{
	1: {0, 1},
	2: {1, 1},
	3: {2, 1},
	4: {3, 1},
	5: {4, 1},
	6: {4, 1},
	7: {5, 2},
}

// BlurTap returns the iterator and saturation for tap index n (1-7).
func BlurTap(n int) (iterator, saturation float32, ok bool) {
	if n < 1 || n >= len(blurTaps) {
		return 0, 0, false
	}
	t := blurTaps[n]
	return t.iterator, t.saturation, true
}

// bindUniforms writes every uniform k's shaders declare. p must be current.
func bindUniforms(p Program, k Key, d *renderengine.Description) {
	proj := d.ProjectionMatrix()
	p.SetUniformMatrix4(p.GetUniform(UniformProjection), &proj)

	if k.IsTexturing() {
		tex := d.Texture().Matrix
		p.SetUniformMatrix4(p.GetUniform(UniformTexture), &tex)
		p.SetUniform1i(p.GetUniform(UniformSampler), 0)
	} else {
		c := d.Color()
		p.SetUniform4f(p.GetUniform(UniformColor), c[0], c[1], c[2], c[3])
	}
	if k.HasPlaneAlpha() {
		p.SetUniform1f(p.GetUniform(UniformAlphaPlane), d.PlaneAlpha())
	}
	if k.HasColorMatrix() {
		cm := d.ColorMatrix()
		p.SetUniformMatrix4(p.GetUniform(UniformColorMatrix), &cm)
	}

	w, h := d.DisplaySize()
	p.SetUniform1i(p.GetUniform(UniformHeight), h)
	p.SetUniform1i(p.GetUniform(UniformWidth), w)

	if !k.IsBlur() {
		return
	}
	sx, bx, sy, by := d.BlurBounds()
	p.SetUniform1f(p.GetUniform(UniformSX), sx)
	p.SetUniform1f(p.GetUniform(UniformBX), bx)
	p.SetUniform1f(p.GetUniform(UniformSY), sy)
	p.SetUniform1f(p.GetUniform(UniformBY), by)
	if it, sat, ok := BlurTap(d.BlurNum()); ok {
		p.SetUniform1f(p.GetUniform(UniformIterator), it)
		p.SetUniform1f(p.GetUniform(UniformSaturation), sat)
	}
}

// bindBlurNum routes the tap index to blurnum1 for even taps and blurnum2
// for odd ones, zeroing the other.
func bindBlurNum(p Program, n int) {
	active, idle := UniformBlurNum1, UniformBlurNum2
	if n%2 != 0 {
		active, idle = idle, active
	}
	p.SetUniform1i(p.GetUniform(active), int32(n))
	p.SetUniform1i(p.GetUniform(idle), 0)
}
