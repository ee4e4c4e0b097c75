package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Ordered sequence of DSP nodes processed in series.
 *
 *		Processing order equals insertion order. The first step
 *		reads src into dst; every later step runs in place on
 *		dst, reusing the one buffer.
 *
 *---------------------------------------------------------------*/

type DSPChain struct {
	Steps []DSP
}

func (chain *DSPChain) Init(capacity int) {
	chain.Steps = make([]DSP, 0, capacity)
}

// Frees every owned node and empties the chain.
func (chain *DSPChain) Deinit() {
	for _, dsp := range chain.Steps {
		FreeDSP(dsp)
	}
	chain.Steps = nil
}

func (chain *DSPChain) Append(dsp DSP) {
	chain.Steps = append(chain.Steps, dsp)
}

func (chain *DSPChain) Prepend(dsp DSP) {
	chain.Steps = append([]DSP{dsp}, chain.Steps...)
}

// Inserts before the given node; appends if before is nil or absent.
func (chain *DSPChain) Insert(dsp DSP, before DSP) {
	for i, step := range chain.Steps {
		if step == before {
			chain.Steps = append(chain.Steps, nil)
			copy(chain.Steps[i+1:], chain.Steps[i:])
			chain.Steps[i] = dsp
			return
		}
	}
	chain.Append(dsp)
}

// Removes the node without freeing it.
func (chain *DSPChain) Remove(dsp DSP) {
	for i, step := range chain.Steps {
		if step == dsp {
			chain.Steps = append(chain.Steps[:i], chain.Steps[i+1:]...)
			return
		}
	}
}

// Runs the whole chain, propagating the first error.
func (chain *DSPChain) Process(dst, src *Buffer, flags uint32) error {
	if len(chain.Steps) == 0 {
		if dst != src {
			if err := checkBuffersForDSPProcess(dst, src, true, true); err != nil {
				return err
			}
			if &dst.Samples[0] != &src.Samples[0] {
				BufferCopy(dst, src)
			}
		}
		return nil
	}
	if err := DSPProcess(chain.Steps[0], dst, src, flags); err != nil {
		return err
	}
	for _, dsp := range chain.Steps[1:] {
		if err := DSPProcess(dsp, dst, dst, flags); err != nil {
			return err
		}
	}
	return nil
}

// Serial combination of every step's specs.
func (chain *DSPChain) GetSpecs(samplerate uint32) DSPSpecs {
	var specs DSPSpecs
	for _, dsp := range chain.Steps {
		stepSpecs := dsp.GetSpecs(samplerate)
		specs.CombineSerial(stepSpecs)
	}
	return specs
}
