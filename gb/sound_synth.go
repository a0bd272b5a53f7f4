package gb

// dutyTable gives the eight-step high/low pattern for each of the four
// square-wave duty cycles (12.5%, 25%, 50%, 75%).
var dutyTable = [4][8]float64{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 1, 0},
}

// SetSampleRate configures the output rate used by GenerateSamples.
func (s *Sound) SetSampleRate(hz int) { s.sampleRate = hz }

// GenerateSamples synthesizes n stereo frames (interleaved left/right
// int16) from the channels' current register state. The synthesis is
// deliberately simple (no band-limiting) but reflects duty, volume
// envelope, frequency, panning (NR51) and master volume (NR50) exactly
// as the register map specifies them.
func (s *Sound) GenerateSamples(n int) []int16 {
	out := make([]int16, n*2)
	if !s.powerOn {
		return out
	}

	leftVol := float64((s.nr50>>4)&0x07+1) / 8
	rightVol := float64(s.nr50&0x07+1) / 8

	for i := 0; i < n; i++ {
		var left, right float64

		if s.ch1.enabled && s.ch1.freq < 2048 {
			v := squareSample(&s.ch1, s.sampleRate)
			left += panned(v, s.nr51, 0x10)
			right += panned(v, s.nr51, 0x01)
		}
		if s.ch2.enabled && s.ch2.freq < 2048 {
			v := squareSample(&s.ch2, s.sampleRate)
			left += panned(v, s.nr51, 0x20)
			right += panned(v, s.nr51, 0x02)
		}
		if s.ch3.enabled && s.ch3.dacOn {
			v := waveSample(&s.ch3, s.sampleRate)
			left += panned(v, s.nr51, 0x40)
			right += panned(v, s.nr51, 0x04)
		}
		if s.ch4.enabled {
			v := noiseSample(&s.ch4, s.sampleRate)
			left += panned(v, s.nr51, 0x80)
			right += panned(v, s.nr51, 0x08)
		}

		out[i*2] = clampSample(left * leftVol)
		out[i*2+1] = clampSample(right * rightVol)
	}
	return out
}

func panned(v float64, nr51 uint8, bit uint8) float64 {
	if nr51&bit != 0 {
		return v
	}
	return 0
}

func squareSample(c *squareChannel, sampleRate int) float64 {
	freqHz := 131072.0 / float64(2048-c.freq)
	c.phase += freqHz / float64(sampleRate)
	step := int(c.phase*8) % 8
	if step < 0 {
		step += 8
	}
	amp := dutyTable[c.duty][step]
	return (amp*2 - 1) * float64(c.volume) / 15
}

func waveSample(c *waveChannel, sampleRate int) float64 {
	freqHz := 65536.0 / float64(2048-c.freq)
	c.phase += freqHz * 32 / float64(sampleRate)
	idx := int(c.phase) % 32
	if idx < 0 {
		idx += 32
	}
	raw := c.wave[idx/2]
	var nibble uint8
	if idx%2 == 0 {
		nibble = raw >> 4
	} else {
		nibble = raw & 0x0F
	}
	shift := [4]uint8{4, 0, 1, 2}[c.volumeCode]
	sample := nibble >> shift
	return (float64(sample)/7.5 - 1)
}

func noiseSample(c *noiseChannel, sampleRate int) float64 {
	divisors := [8]float64{8, 16, 32, 48, 64, 80, 96, 112}
	freqHz := 524288.0 / divisors[c.divisor] / float64(uint(1)<<c.clockShift)
	c.phase += freqHz / float64(sampleRate)
	for c.phase >= 1 {
		c.phase -= 1
		bit := (c.lfsr ^ (c.lfsr >> 1)) & 1
		c.lfsr = (c.lfsr >> 1) | (bit << 14)
		if c.widthMode7 {
			c.lfsr &^= 1 << 6
			c.lfsr |= bit << 6
		}
	}
	out := float64(c.lfsr&1) * 2 - 1
	return -out * float64(c.volume) / 15
}

func clampSample(v float64) int16 {
	s := v * 8000
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
