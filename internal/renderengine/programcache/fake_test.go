package programcache

import (
	"strings"

	"github.com/Faultbox/flinger/pkg/math"
)

// fakeLinker records link calls and hands out fakePrograms.
type fakeLinker struct {
	links int
	// fail marks programs whose fragment source contains this text invalid.
	fail string
}

func (l *fakeLinker) Link(vertexSrc, fragmentSrc string) Program {
	l.links++
	return &fakeProgram{
		vertex:    vertexSrc,
		fragment:  fragmentSrc,
		valid:     l.fail == "" || !strings.Contains(fragmentSrc, l.fail),
		locations: make(map[string]int32),
		values:    make(map[string]any),
	}
}

type fakeProgram struct {
	vertex, fragment string
	valid            bool
	uses             int

	locations map[string]int32
	names     []string
	values    map[string]any
}

func (p *fakeProgram) IsValid() bool { return p.valid }
func (p *fakeProgram) Use()          { p.uses++ }

func (p *fakeProgram) GetUniform(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := int32(len(p.names))
	p.locations[name] = loc
	p.names = append(p.names, name)
	return loc
}

func (p *fakeProgram) set(location int32, v any) {
	if location < 0 || int(location) >= len(p.names) {
		return
	}
	p.values[p.names[location]] = v
}

func (p *fakeProgram) SetUniform1i(location int32, v int32)   { p.set(location, v) }
func (p *fakeProgram) SetUniform1f(location int32, v float32) { p.set(location, v) }
func (p *fakeProgram) SetUniform4f(location int32, x, y, z, w float32) {
	p.set(location, [4]float32{x, y, z, w})
}
func (p *fakeProgram) SetUniformMatrix4(location int32, m *math.Mat4) { p.set(location, *m) }
