package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Float32 math helpers used throughout the DSP code.
 *
 *		Samples are 32-bit floats everywhere, so we keep a set
 *		of float32 wrappers around the stdlib math functions,
 *		plus the windowed-sinc family, dB conversions, a LUT
 *		sine oscillator and the small vec3/mat3 types used by
 *		the spatializer.
 *
 *---------------------------------------------------------------*/

import (
	"math"
)

const (
	tau = float32(6.283185307179586)
	pi  = float32(3.14159265359)
)

func degToRad(x float32) float32 { return x * pi / 180.0 }

func sinf(x float32) float32      { return float32(math.Sin(float64(x))) }
func cosf(x float32) float32      { return float32(math.Cos(float64(x))) }
func expf(x float32) float32      { return float32(math.Exp(float64(x))) }
func sqrtf(x float32) float32     { return float32(math.Sqrt(float64(x))) }
func atan2f(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }
func truncf(x float32) float32    { return float32(math.Trunc(float64(x))) }
func floorf(x float32) float32    { return float32(math.Floor(float64(x))) }
func ceilf(x float32) float32     { return float32(math.Ceil(float64(x))) }
func roundf(x float32) float32    { return float32(math.Round(float64(x))) }
func log10f(x float32) float32    { return float32(math.Log10(float64(x))) }
func powf(x, y float32) float32   { return float32(math.Pow(float64(x), float64(y))) }

func absf(a float32) float32 {
	if a < 0.0 {
		return -a
	}
	return a
}

func sqrf(a float32) float32 { return a * a }

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a < b {
		return b
	}
	return a
}

func clampf(a, min, max float32) float32 {
	return minf(maxf(a, min), max)
}

func linstepf(a, min, max float32) float32 {
	return clampf((a-min)/(max-min), 0.0, 1.0)
}

func lerpf(a, b, t float32) float32 {
	return (b-a)*t + a
}

// Wraps into [0; 1) handling negative inputs.
func wrap01f(a float32) float32 {
	return a - floorf(a)
}

// Like a % max except the answer is always in the range [0; max) even if the input is negative
func wrapi(a, max int) int {
	a %= max
	if a < 0 {
		a += max
	}
	return a
}

func sincf(x float32) float32 {
	if x == 0 {
		return 1.0
	}
	temp := x * pi
	return sinf(temp) / temp
}

// Lanczos kernel: sinc windowed by a wider sinc, zero outside |x| < radius.
func lanczosf(x, radius float32) float32 {
	if absf(x) >= radius {
		return 0.0
	}
	return sincf(x) * sincf(x/radius)
}

// Catmull-Rom style cubic through b and c.
func cubicf(a, b, c, d, x float32) float32 {
	return b + 0.5*x*(c-a+x*(2*a-5*b+4*c-d+x*(3*(b-c)+d-a)))
}

func dbToAmp(db float32) float32 {
	if math.IsInf(float64(db), -1) {
		return 0.0
	}
	return powf(10.0, db/20.0)
}

func ampToDb(amp float32) float32 {
	if amp <= 0.0 {
		return float32(math.Inf(-1))
	}
	return 20.0 * log10f(amp)
}

// Exported conversions for applications driving gains in dB.

func DbToAmp(db float32) float32 { return dbToAmp(db) }

func AmpToDb(amp float32) float32 { return ampToDb(amp) }

func msToSamples(ms, samplerate float32) float32 {
	return ms * samplerate * 0.001
}

func samplesToMs(samples, samplerate float32) float32 {
	return samples / samplerate * 1000.0
}

// Window shape functions, parameterized on t in [0; 1].

func windowHannf(t float32) float32 {
	return 0.5 - 0.5*cosf(tau*t)
}

func windowBlackmanf(t float32) float32 {
	return 0.42 - 0.5*cosf(tau*t) + 0.08*cosf(2.0*tau*t)
}

func windowBlackmanHarrisf(t float32) float32 {
	return 0.35875 - 0.48829*cosf(tau*t) + 0.14128*cosf(2.0*tau*t) - 0.01168*cosf(3.0*tau*t)
}

func windowNuttallf(t float32) float32 {
	return 0.355768 - 0.487396*cosf(tau*t) + 0.144232*cosf(2.0*tau*t) - 0.012604*cosf(3.0*tau*t)
}

// Integrals over [0; 1], used to keep unity gain when windowing.
const (
	windowHannIntegral           = float32(0.5)
	windowBlackmanIntegral       = float32(0.42)
	windowBlackmanHarrisIntegral = float32(0.35875)
	windowNuttallIntegral        = float32(0.355768)
)

// LUT-based approximate sine oscillator where t is periodic between 0 and 1

const oscSineSamples = 128

var oscSineValues [oscSineSamples + 1]float32

func init() {
	initOscillators()
}

func initOscillators() {
	for i := 0; i <= oscSineSamples; i++ {
		oscSineValues[i] = sinf(tau * float32(i) / float32(oscSineSamples))
	}
}

func OscSine(t float32) float32 {
	t = wrap01f(t)
	t *= oscSineSamples
	index := uint32(t)
	offset := t - float32(index)
	return lerpf(oscSineValues[index], oscSineValues[index+1], offset)
}

func OscCosine(t float32) float32 {
	return OscSine(t + 0.25)
}

func OscSquare(t float32) float32 {
	t = wrap01f(t)
	return float32(int(t*2.0))*2.0 - 1.0
}

func OscTriangle(t float32) float32 {
	return 4.0 * (absf(wrap01f(t+0.25)-0.5) - 0.25)
}

func OscSaw(t float32) float32 {
	return wrap01f(t+0.5)*2.0 - 1.0
}

// Vec3 and Mat3, just enough linear algebra for spatialization.
// Mat3 follows GLSL conventions: column-major, post-multiplication.

type Vec3 struct {
	X, Y, Z float32
}

func (lhs Vec3) Add(rhs Vec3) Vec3 {
	return Vec3{lhs.X + rhs.X, lhs.Y + rhs.Y, lhs.Z + rhs.Z}
}

func (lhs Vec3) Sub(rhs Vec3) Vec3 {
	return Vec3{lhs.X - rhs.X, lhs.Y - rhs.Y, lhs.Z - rhs.Z}
}

func (lhs Vec3) MulScalar(rhs float32) Vec3 {
	return Vec3{lhs.X * rhs, lhs.Y * rhs, lhs.Z * rhs}
}

func (lhs Vec3) DivScalar(rhs float32) Vec3 {
	return Vec3{lhs.X / rhs, lhs.Y / rhs, lhs.Z / rhs}
}

func (lhs Vec3) Dot(rhs Vec3) float32 {
	return lhs.X*rhs.X + lhs.Y*rhs.Y + lhs.Z*rhs.Z
}

// Euclidian norm
func (a Vec3) Norm() float32 {
	return sqrtf(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

func (a Vec3) NormSqr() float32 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

func (a Vec3) Normalized() Vec3 {
	return a.DivScalar(a.Norm())
}

// Use this if the norm of a could be very small
func (a Vec3) NormalizedDef(epsilon float32, def Vec3) Vec3 {
	norm := a.Norm()
	if norm < epsilon {
		return def
	}
	return a.DivScalar(norm)
}

type Mat3 struct {
	Right, Up, Forward Vec3
}

// Row vector on the lhs times the matrix.
func (lhs Vec3) MulMat3(rhs Mat3) Vec3 {
	return Vec3{
		lhs.Dot(rhs.Right),
		lhs.Dot(rhs.Up),
		lhs.Dot(rhs.Forward),
	}
}

// World describes the listener frame used by the spatializer.
type World struct {
	Origin       Vec3
	Orientation  Mat3
	SpeedOfSound float32 // in units per second; defaults to 343 m/s
}

// Transforms a world-space point into listener space.
func (w *World) TransformPoint(p Vec3) Vec3 {
	return p.Sub(w.Origin).MulMat3(w.Orientation)
}

var WorldDefault = World{
	Orientation: Mat3{
		Right:   Vec3{1.0, 0.0, 0.0},
		Up:      Vec3{0.0, 1.0, 0.0},
		Forward: Vec3{0.0, 0.0, 1.0},
	},
	SpeedOfSound: 343.0,
}
