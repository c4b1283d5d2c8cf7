package compositor

import (
	"math/rand"
)

// noiseChance is the per-pixel probability of a noise speck.
const noiseChance = 0.05

// pointEffects applies noise then invert, pixel by pixel. Alpha is kept.
func pointEffects(pix []byte, p Params, rng *rand.Rand) {
	for i := 0; i+3 < len(pix); i += 4 {
		if p.ShowNoise && rng.Float64() < noiseChance {
			pix[i] = p.NoiseColor.R
			pix[i+1] = p.NoiseColor.G
			pix[i+2] = p.NoiseColor.B
		}
		if p.ShowInvert {
			pix[i] = 255 - pix[i]
			pix[i+1] = 255 - pix[i+1]
			pix[i+2] = 255 - pix[i+2]
		}
	}
}

// emboss rewrites each colour channel in place as
// 127 + 2*self - right - below, clamped to a byte. Channels whose right or
// lower neighbour falls outside the buffer become 0. The pass runs front to
// back over the shared buffer, so neighbours to the right and below still
// hold their pre-emboss values when read.
func emboss(pix []byte, stride int) {
	n := len(pix)
	for i := 0; i < n; i++ {
		if i%4 == 3 {
			continue
		}
		right, below := i+4, i+stride
		if right >= n || below >= n {
			pix[i] = 0
			continue
		}
		v := 127 + 2*int(pix[i]) - int(pix[right]) - int(pix[below])
		pix[i] = uint8(max(0, min(255, v)))
	}
}
