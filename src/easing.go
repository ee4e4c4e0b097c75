package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Easing functions for parameterizing interpolations.
 *		All easing functions are defined to be 0 at t=0 and
 *		1 at t=1.
 *
 *---------------------------------------------------------------*/

type EaseFunc func(t float32) float32

// has a slope of 1 everywhere
func EaseLinear(t float32) float32 {
	return t
}

// starts fast, ends slow
func EaseCosineIn(t float32) float32 {
	return sinf(t * (pi / 2.0))
}

// starts slow, ends fast
func EaseCosineOut(t float32) float32 {
	return 1.0 - cosf(t*(pi/2.0))
}

// S curve, starts and ends slow
func EaseCosineInOut(t float32) float32 {
	return 0.5 * (1.0 - cosf(t*pi))
}
