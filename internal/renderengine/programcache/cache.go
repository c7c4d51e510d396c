// Package programcache maps rendering descriptions to compiled GL programs.
//
// A Key captures the description fields that change shader text. The Cache
// generates vertex and fragment sources for each distinct Key once, links
// them through a Linker, and keeps the result for its whole lifetime. All
// methods must be called on the thread that owns the GL context.
package programcache

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/flinger/internal/renderengine"
	"github.com/Faultbox/flinger/pkg/math"
)

// Program is a linked vertex/fragment pair.
type Program interface {
	// IsValid reports whether compile and link succeeded.
	IsValid() bool
	// Use makes the program current.
	Use()
	// GetUniform returns the location of name, or -1 if it is not active.
	GetUniform(name string) int32

	SetUniform1i(location int32, v int32)
	SetUniform1f(location int32, v float32)
	SetUniform4f(location int32, x, y, z, w float32)
	SetUniformMatrix4(location int32, m *math.Mat4)
}

// Linker compiles and links generated sources. Failures are reported through
// the returned program's IsValid.
type Linker interface {
	Link(vertexSrc, fragmentSrc string) Program
}

// PrimeMask is the set of fields enumerated by PrimeCache. Color matrix,
// wide gamut, blur and first-app variants are generated on first use.
const PrimeMask = BlendMask | OpacityMask | PlaneAlphaMask | TextureMask

// Config controls cache construction.
type Config struct {
	// Prime generates every PrimeMask combination in New.
	Prime bool
	// SlowCompile logs a warning for lazy generations that take longer.
	// Zero disables the warning.
	SlowCompile time.Duration
	Logger      *zap.Logger
}

// Stats reports cache activity.
type Stats struct {
	Primed        int
	PrimeDuration time.Duration
	Lazy          int
	Size          int
}

// Cache owns one Program per distinct Key. Entries are never evicted.
type Cache struct {
	linker   Linker
	log      *zap.Logger
	slow     time.Duration
	programs map[Bits]Program
	stats    Stats
}

// New creates a cache that links programs with linker.
func New(linker Linker, cfg Config) *Cache {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{
		linker:   linker,
		log:      log,
		slow:     cfg.SlowCompile,
		programs: make(map[Bits]Program),
	}
	if cfg.Prime {
		c.PrimeCache()
	}
	return c
}

// PrimeCache generates every valid combination of PrimeMask that is not
// already cached and returns how many it generated.
func (c *Cache) PrimeCache() (int, time.Duration) {
	start := time.Now()
	count := 0
	for v := Bits(0); v <= PrimeMask; v++ {
		var b Bits
		k := Decode(b.Set(PrimeMask, v))
		if !k.Valid() {
			continue
		}
		if _, ok := c.programs[k.Encode()]; ok {
			continue
		}
		c.programs[k.Encode()] = c.generate(k)
		count++
	}
	elapsed := time.Since(start)

	c.stats.Primed += count
	c.stats.PrimeDuration += elapsed
	c.log.Info("shader cache generated",
		zap.Int("shaders", count),
		zap.Float64("ms", float64(elapsed.Microseconds())/1000),
	)
	return count, elapsed
}

func (c *Cache) generate(k Key) Program {
	return c.linker.Link(GenerateVertexShader(k), GenerateFragmentShader(k))
}

// program returns the cached program for k, generating it on a miss.
func (c *Cache) program(k Key) Program {
	b := k.Encode()
	if p, ok := c.programs[b]; ok {
		return p
	}

	start := time.Now()
	p := c.generate(k)
	c.programs[b] = p
	c.stats.Lazy++
	elapsed := time.Since(start)

	c.log.Debug("generated program",
		zap.Stringer("key", k),
		zap.Duration("elapsed", elapsed),
		zap.Int("programs", len(c.programs)),
	)
	if c.slow > 0 && elapsed > c.slow {
		c.log.Warn("slow program generation",
			zap.Stringer("key", k),
			zap.Duration("elapsed", elapsed),
		)
	}
	return p
}

// Lookup returns the cached program for k without generating one.
func (c *Cache) Lookup(k Key) (Program, bool) {
	p, ok := c.programs[k.Encode()]
	return p, ok
}

// Len returns the number of cached programs.
func (c *Cache) Len() int { return len(c.programs) }

// Keys returns every cached key in ascending packed order.
func (c *Cache) Keys() []Key {
	keys := make([]Key, 0, len(c.programs))
	for b := Bits(0); b <= FieldsMask; b++ {
		if _, ok := c.programs[b]; ok {
			keys = append(keys, Decode(b))
		}
	}
	return keys
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.Size = len(c.programs)
	return s
}

// UseProgram makes the program for d current and writes its per-draw
// uniforms. It reports false when the program failed to link; the caller
// should skip the draw.
func (c *Cache) UseProgram(d *renderengine.Description) bool {
	k := ComputeKey(d)
	p := c.program(k)
	if !p.IsValid() {
		return false
	}
	p.Use()
	bindUniforms(p, k, d)
	return true
}

// ChangeUniform updates only the blur tap uniforms of an already cached blur
// program. It never generates a program.
func (c *Cache) ChangeUniform(d *renderengine.Description) {
	k := ComputeKey(d)
	if !k.IsBlur() {
		return
	}
	p, ok := c.Lookup(k)
	if !ok || !p.IsValid() {
		return
	}
	bindBlurNum(p, d.BlurNum())
}
