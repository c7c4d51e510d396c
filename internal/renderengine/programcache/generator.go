package programcache

// Uniform names shared by the generators and the binding code.
const (
	UniformProjection  = "projection"
	UniformTexture     = "texture"
	UniformSampler     = "sampler"
	UniformColor       = "color"
	UniformAlphaPlane  = "alphaPlane"
	UniformColorMatrix = "colorMatrix"
	UniformWidth       = "rWidth"
	UniformHeight      = "rHeight"
	UniformIterator    = "iterator"
	UniformSaturation  = "saturation"
	UniformSX          = "sx"
	UniformBX          = "bx"
	UniformSY          = "sy"
	UniformBY          = "by"
	UniformBlurNum1    = "blurnum1"
	UniformBlurNum2    = "blurnum2"
)

// Vertex attribute names and the locations they are bound to before link.
const (
	AttribPosition  = "position"
	AttribTexCoords = "texCoords"

	PositionLocation  = 0
	TexCoordsLocation = 1
)

// ExternalExtension is the directive required to sample external textures.
const ExternalExtension = "#extension GL_OES_EGL_image_external : require"

// unpremultiplyEpsilon is added to alpha before dividing by it (about 0.5/256).
const unpremultiplyEpsilon = "0.0019"

const wideGamutTransfer = `
float OETF_sRGB(const float linear) {
    return linear <= 0.0031308 ?
            linear * 12.92 : (pow(linear, 1.0 / 2.4) * 1.055) - 0.055;
}

vec3 OETF_sRGB(const vec3 linear) {
    return vec3(OETF_sRGB(linear.r), OETF_sRGB(linear.g), OETF_sRGB(linear.b));
}

vec3 OETF_scRGB(const vec3 linear) {
    return sign(linear.rgb) * OETF_sRGB(abs(linear.rgb));
}

float EOTF_sRGB(float srgb) {
    return srgb <= 0.04045 ? srgb / 12.92 : pow((srgb + 0.055) / 1.055, 2.4);
}

vec3 EOTF_sRGB(const vec3 srgb) {
    return vec3(EOTF_sRGB(srgb.r), EOTF_sRGB(srgb.g), EOTF_sRGB(srgb.b));
}

vec3 EOTF_scRGB(const vec3 srgb) {
    return sign(srgb.rgb) * EOTF_sRGB(abs(srgb.rgb));
}
`

// Outside wide gamut the transfer functions are no-ops the compiler removes.
const passthroughTransfer = `
vec3 OETF_scRGB(const vec3 linear) {
    return linear;
}

vec3 EOTF_scRGB(const vec3 srgb) {
    return srgb;
}
`

var vertexBlocks = []block{
	{"texcoord-io", Key.IsTexturing, func(s *source, _ Key) {
		s.line("attribute vec4 "+AttribTexCoords+";", "varying vec2 outTexCoords;")
	}},
	{"position-io", always, func(s *source, _ Key) {
		s.line(
			"attribute vec4 "+AttribPosition+";",
			"uniform mat4 "+UniformProjection+";",
			"uniform mat4 "+UniformTexture+";",
		)
	}},
	{"main-open", always, func(s *source, _ Key) {
		s.line("void main(void) {")
		s.indent()
		s.line("gl_Position = projection * position;")
	}},
	{"texcoord-transform", Key.IsTexturing, func(s *source, _ Key) {
		s.line("outTexCoords = (texture * texCoords).st;")
	}},
	{"main-close", always, closeMain},
}

// fragmentBlocks must stay in this order: every declaration precedes its use.
var fragmentBlocks = []block{
	{"external-extension", isExternal, func(s *source, _ Key) {
		s.line(ExternalExtension)
	}},
	{"precision", always, func(s *source, _ Key) {
		s.line("precision mediump float;")
	}},
	{"sampler-external", isExternal, func(s *source, _ Key) {
		s.line("uniform samplerExternalOES "+UniformSampler+";", "varying vec2 outTexCoords;")
	}},
	{"sampler-2d", is2D, func(s *source, _ Key) {
		s.line("uniform sampler2D "+UniformSampler+";", "varying vec2 outTexCoords;")
	}},
	{"flat-color", isUntextured, func(s *source, _ Key) {
		s.line("uniform vec4 " + UniformColor + ";")
	}},
	{"plane-alpha-uniform", Key.HasPlaneAlpha, func(s *source, _ Key) {
		s.line("uniform float " + UniformAlphaPlane + ";")
	}},
	{"color-matrix-uniform", Key.HasColorMatrix, func(s *source, _ Key) {
		s.line("uniform mat4 " + UniformColorMatrix + ";")
	}},
	{"transfer-wide-gamut", wideGamutMatrix, func(s *source, _ Key) {
		s.snippet(wideGamutTransfer)
	}},
	{"transfer-passthrough", narrowGamutMatrix, func(s *source, _ Key) {
		s.snippet(passthroughTransfer)
	}},
	{"resolution-uniforms", always, func(s *source, _ Key) {
		s.line("uniform int "+UniformWidth+";", "uniform int "+UniformHeight+";")
	}},
	{"blur-uniforms", Key.IsBlur, func(s *source, _ Key) {
		s.line(
			"uniform float "+UniformIterator+";",
			"uniform float "+UniformSaturation+";",
			"uniform float "+UniformSX+";",
			"uniform float "+UniformBX+";",
			"uniform float "+UniformSY+";",
			"uniform float "+UniformBY+";",
		)
	}},
	{"main-open", always, func(s *source, _ Key) {
		s.line("void main(void) {")
		s.indent()
	}},
	{"base-texture", Key.IsTexturing, func(s *source, _ Key) {
		s.line("gl_FragColor = texture2D(sampler, outTexCoords);")
	}},
	{"base-color", isUntextured, func(s *source, _ Key) {
		s.line("gl_FragColor = color;")
	}},
	{"blur", Key.IsBlur, emitBlur},
	{"opaque", Key.IsOpaque, func(s *source, _ Key) {
		s.line("gl_FragColor.a = 1.0;")
	}},
	{"plane-alpha-premultiplied", premultipliedPlaneAlpha, func(s *source, _ Key) {
		s.line("gl_FragColor *= alphaPlane;")
	}},
	{"plane-alpha-normal", normalPlaneAlpha, func(s *source, _ Key) {
		s.line("gl_FragColor.a *= alphaPlane;")
	}},
	{"unpremultiply", bracketsColorMatrix, func(s *source, _ Key) {
		s.line("gl_FragColor.rgb = gl_FragColor.rgb / (gl_FragColor.a + " + unpremultiplyEpsilon + ");")
	}},
	// the last row of the color matrix is {0,0,0,1} so w is never divided out
	{"color-matrix", Key.HasColorMatrix, func(s *source, _ Key) {
		s.line(
			"vec4 transformed = colorMatrix * vec4(EOTF_scRGB(gl_FragColor.rgb), 1);",
			"gl_FragColor.rgb = OETF_scRGB(transformed.rgb);",
		)
	}},
	{"repremultiply", bracketsColorMatrix, func(s *source, _ Key) {
		s.line("gl_FragColor.rgb = gl_FragColor.rgb * (gl_FragColor.a + " + unpremultiplyEpsilon + ");")
	}},
	{"main-close", always, closeMain},
}

func isExternal(k Key) bool   { return k.Texture == TextureExternal }
func is2D(k Key) bool         { return k.Texture == Texture2D }
func isUntextured(k Key) bool { return !k.IsTexturing() }

func wideGamutMatrix(k Key) bool   { return k.HasColorMatrix() && k.IsWideGamut() }
func narrowGamutMatrix(k Key) bool { return k.HasColorMatrix() && !k.IsWideGamut() }

func premultipliedPlaneAlpha(k Key) bool { return k.HasPlaneAlpha() && k.IsPremultiplied() }
func normalPlaneAlpha(k Key) bool        { return k.HasPlaneAlpha() && !k.IsPremultiplied() }

func bracketsColorMatrix(k Key) bool {
	return k.HasColorMatrix() && !k.IsOpaque() && k.IsPremultiplied()
}

func closeMain(s *source, _ Key) {
	s.dedent()
	s.line("}")
}

// emitBlur averages the center texel with four diagonal taps spaced by the
// iterator, clamped to the [sx,bx]x[sy,by] window, then adjusts saturation.
func emitBlur(s *source, _ Key) {
	s.line(
		"vec2 resolution = vec2(1.0 / float(rWidth), 1.0 / float(rHeight));",
		"vec2 pixelSize = resolution * 4.0;",
		"vec2 halfPixelSize = pixelSize / 2.0;",
		"vec2 dUV = (pixelSize.xy * vec2(iterator, iterator)) + halfPixelSize.xy;",
		"float x1 = outTexCoords.x - dUV.x;",
		"float x2 = outTexCoords.x + dUV.x;",
		"float y1 = outTexCoords.y - dUV.y;",
		"float y2 = outTexCoords.y + dUV.y;",
		"if (x1 < sx) x1 = outTexCoords.x;",
		"if (x2 > bx) x2 = outTexCoords.x;",
		"if (y1 < sy) y1 = outTexCoords.y;",
		"if (y2 > by) y2 = outTexCoords.y;",
		"vec3 cOut = texture2D(sampler, outTexCoords).xyz;",
		"vec3 cOut1 = texture2D(sampler, vec2(x1, y1)).xyz;",
		"vec3 cOut2 = texture2D(sampler, vec2(x1, y2)).xyz;",
		"vec3 cOut3 = texture2D(sampler, vec2(x2, y1)).xyz;",
		"vec3 cOut4 = texture2D(sampler, vec2(x2, y2)).xyz;",
		"cOut = (cOut + cOut1 + cOut2 + cOut3 + cOut4) * 0.2;",
		"const vec3 W = vec3(0.2125, 0.7154, 0.0721);",
		"vec3 intensity = vec3(dot(cOut.rgb, W));",
		"cOut.rgb = mix(intensity, cOut.rgb, saturation);",
		"gl_FragColor = vec4(cOut.xyz, 1.0);",
	)
}

// GenerateVertexShader returns the vertex shader source for k.
func GenerateVertexShader(k Key) string {
	return assemble(k, vertexBlocks)
}

// GenerateFragmentShader returns the fragment shader source for k.
func GenerateFragmentShader(k Key) string {
	return assemble(k, fragmentBlocks)
}

// FragmentBlocks lists, in emission order, the named fragment blocks
// generated for k.
func FragmentBlocks(k Key) []string {
	return included(k, fragmentBlocks)
}

// VertexBlocks lists, in emission order, the named vertex blocks generated
// for k.
func VertexBlocks(k Key) []string {
	return included(k, vertexBlocks)
}
