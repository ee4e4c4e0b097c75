package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Dense routing matrix from N input channels to M output
 *		channels, with automatic generation by speaker position
 *		proximity.
 *
 *---------------------------------------------------------------*/

import (
	"sort"
)

type ChannelMatrix struct {
	Inputs, Outputs uint8
	// Inputs rows of Outputs coefficients.
	Matrix []float32
}

func ChannelMatrixInit(data *ChannelMatrix, inputs, outputs uint8) {
	data.Inputs = inputs
	data.Outputs = outputs
	total := int(inputs) * int(outputs)
	if total > 0 {
		data.Matrix = make([]float32, total)
	} else {
		data.Matrix = nil
	}
}

func (data *ChannelMatrix) Coefficient(input, output uint8) float32 {
	return data.Matrix[int(input)*int(data.Outputs)+int(output)]
}

type distChannelPair struct {
	dist int16
	dstC int16
}

// Fills in a routing matrix from the two layouts:
//  1. Same positions connect directly with weight 1.
//  2. Unmatched source channels split between the two closest destination
//     channels, weighted by their respective angular distances.
//  3. A mono destination just receives everything at full weight.
//
// Expects data to have been initted with srcLayout.Count inputs and
// dstLayout.Count outputs, all zero.
func ChannelMatrixGenerateRoutingFromLayouts(data *ChannelMatrix, srcLayout, dstLayout ChannelLayout) {
	if data.Inputs != srcLayout.Count || data.Outputs != dstLayout.Count {
		logError("ChannelMatrixGenerateRoutingFromLayouts: matrix is %dx%d but layouts are %dx%d", data.Inputs, data.Outputs, srcLayout.Count, dstLayout.Count)
		return
	}
	if dstLayout.Count == 1 {
		// Just make them all connect to the one singular output channel
		for srcC := uint8(0); srcC < srcLayout.Count; srcC++ {
			data.Matrix[int(data.Outputs)*int(srcC)] = 1.0
		}
		return
	}
	var srcChannelUsed [MaxChannelPositions]bool
	srcChannelsUsed := 0
	for srcC := uint8(0); srcC < srcLayout.Count; srcC++ {
		for dstC := uint8(0); dstC < dstLayout.Count; dstC++ {
			if srcLayout.Positions[srcC] == dstLayout.Positions[dstC] {
				srcChannelUsed[srcC] = true
				data.Matrix[int(data.Outputs)*int(srcC)+int(dstC)] = 1.0
				srcChannelsUsed++
				break
			}
		}
	}
	if srcChannelsUsed >= int(srcLayout.Count) {
		return
	}
	// Try and find the 2 closest channels for each channel not already mapped
	for srcC := uint8(0); srcC < srcLayout.Count; srcC++ {
		if srcChannelUsed[srcC] {
			continue
		}
		list := make([]distChannelPair, dstLayout.Count)
		for dstC := uint8(0); dstC < dstLayout.Count; dstC++ {
			list[dstC] = distChannelPair{
				dist: positionDistance(srcLayout.Positions[srcC], dstLayout.Positions[dstC]),
				dstC: int16(dstC),
			}
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].dist < list[j].dist
		})
		// Pick the first 2 in the list as they should be the 2 closest
		// Set weights based on respective distances
		totalDist := float32(list[0].dist + list[1].dist)
		data.Matrix[int(data.Outputs)*int(srcC)+int(list[0].dstC)] = 1.0 - float32(list[0].dist)/totalDist
		data.Matrix[int(data.Outputs)*int(srcC)+int(list[1].dstC)] = 1.0 - float32(list[1].dist)/totalDist
	}
}
