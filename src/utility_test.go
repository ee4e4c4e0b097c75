package azaudio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ADSRFullCycle(t *testing.T) {
	config := ADSRConfig{
		Attack:  10.0,
		Decay:   10.0,
		Sustain: -6.0,
		Release: 20.0,
	}
	var instance ADSRInstance
	instance.Start()
	assert.Equal(t, ADSRStageAttack, instance.Stage)

	// Halfway through the attack we're at half volume
	value := float32(0.0)
	for i := 0; i < 5; i++ {
		value = instance.Update(&config, 1.0)
	}
	assert.InDelta(t, 0.5, value, 0.11)

	// Finish attack and decay; sustain sits at the configured gain
	for i := 0; i < 25; i++ {
		value = instance.Update(&config, 1.0)
	}
	assert.Equal(t, ADSRStageSustain, instance.Stage)
	assert.InDelta(t, dbToAmp(-6.0), value, 1e-5)

	// Release decays to zero and stops
	instance.Stop()
	for i := 0; i < 25; i++ {
		value = instance.Update(&config, 1.0)
	}
	assert.Equal(t, ADSRStageStop, instance.Stage)
	assert.Zero(t, value)
}

func Test_ADSRZeroTimesSkipStages(t *testing.T) {
	config := ADSRConfig{}
	var instance ADSRInstance
	instance.Start()
	value := instance.Update(&config, 1.0)
	assert.Equal(t, ADSRStageSustain, instance.Stage)
	assert.Equal(t, float32(1.0), value)
}

func Test_FollowerLinearChasesTarget(t *testing.T) {
	var follower FollowerLinear
	follower.Jump(1.0)
	assert.Equal(t, float32(1.0), follower.GetValue())

	follower.SetTarget(3.0)
	follower.Update(0.5)
	assert.InDelta(t, 2.0, follower.GetValue(), 1e-6)
	follower.Update(0.5)
	assert.InDelta(t, 3.0, follower.GetValue(), 1e-6)
	// Saturates at the target
	follower.Update(0.5)
	assert.InDelta(t, 3.0, follower.GetValue(), 1e-6)
}

func Test_FollowerLinearHandlesMovingTarget(t *testing.T) {
	var follower FollowerLinear
	follower.Jump(0.0)
	follower.SetTarget(1.0)
	follower.Update(0.5)
	// Retargeting mid-flight restarts from the current value
	follower.SetTarget(0.0)
	assert.InDelta(t, 0.5, follower.Start, 1e-6)
	assert.Zero(t, follower.Progress)
}

func Test_DBConversions(t *testing.T) {
	assert.InDelta(t, 1.0, dbToAmp(0.0), 1e-6)
	assert.InDelta(t, 0.5, dbToAmp(-6.0206), 1e-4)
	assert.InDelta(t, -6.0206, ampToDb(0.5), 1e-3)
	assert.Zero(t, dbToAmp(float32(math.Inf(-1))))
}

func Test_DSPSpecsCombine(t *testing.T) {
	a := DSPSpecs{LatencyFrames: 100, LeadingFrames: 5, TrailingFrames: 2}
	b := DSPSpecs{LatencyFrames: 50, LeadingFrames: 10, TrailingFrames: 1}

	serial := a
	serial.CombineSerial(b)
	assert.Equal(t, uint32(150), serial.LatencyFrames)
	assert.Equal(t, uint32(10), serial.LeadingFrames)
	assert.Equal(t, uint32(2), serial.TrailingFrames)

	parallel := a
	parallel.CombineParallel(b)
	assert.Equal(t, uint32(100), parallel.LatencyFrames)
	assert.Equal(t, uint32(10), parallel.LeadingFrames)
}

func Test_ErrorStrings(t *testing.T) {
	assert.Equal(t, "MixerRoutingCycle", ErrMixerRoutingCycle.Error())
	assert.Contains(t, ErrorCode(9999).Error(), "Unknown")
}
