package main

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"

	"github.com/Faultbox/flinger/internal/engine/framebuffer"
	"github.com/Faultbox/flinger/internal/renderengine/programcache"
)

// warmupSize is the edge of the offscreen target warmup draws go to.
const warmupSize = 16

// quad is a triangle strip: x, y position then s, t texture coordinates.
var quad = []float32{
	0, 0, 0, 0,
	warmupSize, 0, 1, 0,
	0, warmupSize, 0, 1,
	warmupSize, warmupSize, 1, 1,
}

// warmup draws one quad with every cached key's program so drivers that
// defer compilation until first use finish that work now. It returns the
// number of draws issued.
func warmup(cache *programcache.Cache) (int, error) {
	fb, err := framebuffer.New(warmupSize, warmupSize)
	if err != nil {
		return 0, err
	}
	defer fb.Destroy()

	restore := fb.Bind()
	defer restore()
	fb.Clear(0, 0, 0, 0)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	defer gl.DeleteBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)

	const stride = 4 * 4
	gl.EnableVertexAttribArray(programcache.PositionLocation)
	gl.VertexAttribPointerWithOffset(programcache.PositionLocation, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(programcache.TexCoordsLocation)
	gl.VertexAttribPointerWithOffset(programcache.TexCoordsLocation, 2, gl.FLOAT, false, stride, 2*4)

	w, h := fb.Size()
	draws := 0
	for _, k := range cache.Keys() {
		if !cache.UseProgram(descriptionFor(k, w, h)) {
			continue
		}
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		draws++
	}
	gl.Finish()

	if code := gl.GetError(); code != gl.NO_ERROR {
		return draws, fmt.Errorf("warmup draws: GL error 0x%x", code)
	}
	return draws, nil
}
