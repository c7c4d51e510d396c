// Package shader compiles generated GLSL ES sources into GL programs.
package shader

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"go.uber.org/zap"

	"github.com/Faultbox/flinger/internal/renderengine/programcache"
	"github.com/Faultbox/flinger/pkg/math"
)

// Program is a linked GL program. A Program that failed to compile or link
// keeps the driver's log in Err and is never made current.
type Program struct {
	id       uint32
	err      error
	uniforms map[string]int32
}

// Linker links programs on the current GL context.
type Linker struct {
	Log *zap.Logger
}

// Link implements programcache.Linker.
func (l Linker) Link(vertexSrc, fragmentSrc string) programcache.Program {
	p := Link(vertexSrc, fragmentSrc)
	if p.err != nil && l.Log != nil {
		l.Log.Warn("program link failed", zap.Error(p.err))
	}
	return p
}

// Link compiles and links vertexSrc and fragmentSrc with the standard
// attribute bindings.
func Link(vertexSrc, fragmentSrc string) *Program {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	return &Program{id: id, err: err, uniforms: make(map[string]int32)}
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.BindAttribLocation(program, programcache.PositionLocation, gl.Str(programcache.AttribPosition+"\x00"))
	gl.BindAttribLocation(program, programcache.TexCoordsLocation, gl.Str(programcache.AttribTexCoords+"\x00"))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf []byte) {
			gl.GetProgramInfoLog(program, logLen, nil, &buf[0])
		})
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", log)
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf []byte) {
			gl.GetShaderInfoLog(shader, logLen, nil, &buf[0])
		})
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, log)
	}

	return shader, nil
}

// infoLog reads a driver log of n bytes. Some drivers report an empty log
// on failure.
func infoLog(n int32, read func([]byte)) string {
	if n <= 0 {
		return "no info log"
	}
	buf := make([]byte, n)
	read(buf)
	return strings.TrimRight(string(buf), "\x00")
}

// ID returns the GL program name, or 0 if linking failed.
func (p *Program) ID() uint32 { return p.id }

// Err returns the compile or link error, if any.
func (p *Program) Err() error { return p.err }

func (p *Program) IsValid() bool { return p.err == nil }

// Use makes the program current.
func (p *Program) Use() {
	gl.UseProgram(p.id)
}

// GetUniform returns the uniform location for name, or -1 if it is not
// active. Locations are looked up once per name.
func (p *Program) GetUniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := int32(-1)
	if p.IsValid() {
		loc = gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	}
	p.uniforms[name] = loc
	return loc
}

func (p *Program) SetUniform1i(location int32, v int32)   { gl.Uniform1i(location, v) }
func (p *Program) SetUniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (p *Program) SetUniform4f(location int32, x, y, z, w float32) {
	gl.Uniform4f(location, x, y, z, w)
}

func (p *Program) SetUniformMatrix4(location int32, m *math.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, m.Ptr())
}
