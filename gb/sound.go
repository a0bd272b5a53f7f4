package gb

// soundEvent tags the frame sequencer's timebases, scheduled on their
// own Scheduler[soundEvent] independent of the PPU's and Timer's event
// types.
type soundEvent uint8

const (
	seqLength soundEvent = iota
	seqSweep
	seqEnvelope
)

// frameSequencerPeriod is 512 Hz expressed in CPU cycles.
const frameSequencerPeriod uint64 = 8192

// squareChannel backs NR1x (with sweep) and NR2x (without): duty,
// volume envelope, length counter, frequency.
type squareChannel struct {
	duty       uint8
	volumeInit uint8
	envUp      bool
	envPeriod  uint8
	freq       uint16
	lengthLoad uint8
	lengthOn   bool

	hasSweep   bool
	sweepPeriod uint8
	sweepUp    bool
	sweepShift uint8

	enabled     bool
	volume      uint8
	lengthTimer uint16
	envTimer    uint8
	sweepTimer  uint8
	phase       float64
}

type waveChannel struct {
	dacOn      bool
	lengthLoad uint16
	volumeCode uint8
	freq       uint16
	lengthOn   bool
	wave       [16]uint8

	enabled     bool
	lengthTimer uint16
	phase       float64
	samplePos   int
}

type noiseChannel struct {
	volumeInit uint8
	envUp      bool
	envPeriod  uint8
	clockShift uint8
	widthMode7 bool
	divisor    uint8
	lengthLoad uint8
	lengthOn   bool

	enabled     bool
	volume      uint8
	lengthTimer uint16
	envTimer    uint8
	lfsr        uint16
	phase       float64
}

// Sound is the four channels plus the master mixer registers NR50-NR52.
// Samples are produced by sound_synth.go.
type Sound struct {
	ch1 squareChannel
	ch2 squareChannel
	ch3 waveChannel
	ch4 noiseChannel

	nr50, nr51 uint8
	powerOn    bool

	seq     *Scheduler[soundEvent]
	seqStep int
	lastSync uint64

	sampleRate int
}

func newSound() *Sound {
	s := &Sound{seq: NewScheduler[soundEvent](), sampleRate: 44100}
	s.ch1.hasSweep = true
	return s
}

func (s *Sound) reset() {
	*s = Sound{seq: NewScheduler[soundEvent](), sampleRate: s.sampleRate}
	s.ch1.hasSweep = true
}

// Advance drains due frame-sequencer steps, updating length counters (256
// Hz), the channel-1 sweep (128 Hz), and envelopes (64 Hz).
func (s *Sound) Advance(now uint64) {
	if s.seq.Len() == 0 {
		s.seq.Schedule(now+frameSequencerPeriod, seqLength)
	}
	s.seq.Drain(now, func(event soundEvent, at uint64) {
		s.step()
		s.seq.Schedule(at+frameSequencerPeriod, seqLength)
	})
}

// step advances the 8-phase frame sequencer by one tick, firing the
// length/sweep/envelope clocks on the phases real hardware uses.
func (s *Sound) step() {
	phase := s.seqStep
	s.seqStep = (s.seqStep + 1) % 8

	if phase%2 == 0 {
		s.clockLength(&s.ch1.enabled, &s.ch1.lengthOn, &s.ch1.lengthTimer)
		s.clockLength(&s.ch2.enabled, &s.ch2.lengthOn, &s.ch2.lengthTimer)
		s.clockLength(&s.ch3.enabled, &s.ch3.lengthOn, &s.ch3.lengthTimer)
		s.clockLength(&s.ch4.enabled, &s.ch4.lengthOn, &s.ch4.lengthTimer)
	}
	if phase == 2 || phase == 6 {
		s.clockSweep()
	}
	if phase == 7 {
		s.clockEnvelope(&s.ch1.envUp, &s.ch1.envPeriod, &s.ch1.envTimer, &s.ch1.volume)
		s.clockEnvelope(&s.ch2.envUp, &s.ch2.envPeriod, &s.ch2.envTimer, &s.ch2.volume)
		s.clockEnvelope(&s.ch4.envUp, &s.ch4.envPeriod, &s.ch4.envTimer, &s.ch4.volume)
	}
}

func (s *Sound) clockLength(enabled *bool, lengthOn *bool, timer *uint16) {
	if !*lengthOn || *timer == 0 {
		return
	}
	*timer--
	if *timer == 0 {
		*enabled = false
	}
}

func (s *Sound) clockSweep() {
	c := &s.ch1
	if !c.hasSweep || c.sweepPeriod == 0 {
		return
	}
	if c.sweepTimer > 0 {
		c.sweepTimer--
	}
	if c.sweepTimer == 0 {
		c.sweepTimer = c.sweepPeriod
		delta := c.freq >> c.sweepShift
		if c.sweepUp {
			c.freq += delta
		} else {
			c.freq -= delta
		}
		if c.freq > 2047 {
			c.enabled = false
		}
	}
}

func (s *Sound) clockEnvelope(envUp *bool, period *uint8, timer *uint8, volume *uint8) {
	if *period == 0 {
		return
	}
	if *timer > 0 {
		*timer--
	}
	if *timer == 0 {
		*timer = *period
		if *envUp && *volume < 15 {
			*volume++
		} else if !*envUp && *volume > 0 {
			*volume--
		}
	}
}

// ReadRegister/WriteRegister implement the exact NR10-NR52/wave-RAM
// register map (0xFF10-0xFF3F).
func (s *Sound) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF10:
		return packSweep(s.ch1)
	case 0xFF11, 0xFF16:
		return packDutyLen(ch2or1(s, addr))
	case 0xFF12, 0xFF17:
		return packEnvelope(ch2or1(s, addr).envUp, ch2or1(s, addr).envPeriod, ch2or1(s, addr).volumeInit)
	case 0xFF14, 0xFF19:
		return packFreqHi(ch2or1(s, addr).lengthOn)
	case 0xFF1A:
		if s.ch3.dacOn {
			return 0x80
		}
		return 0x00
	case 0xFF1C:
		return s.ch3.volumeCode << 5
	case 0xFF1E:
		return packFreqHi(s.ch3.lengthOn)
	case 0xFF21:
		return packEnvelope(s.ch4.envUp, s.ch4.envPeriod, s.ch4.volumeInit)
	case 0xFF22:
		return s.ch4.clockShift<<4 | boolBit(s.ch4.widthMode7, 3) | s.ch4.divisor
	case 0xFF23:
		return packFreqHi(s.ch4.lengthOn)
	case 0xFF24:
		return s.nr50
	case 0xFF25:
		return s.nr51
	case 0xFF26:
		return s.nr52()
	}
	if addr >= 0xFF30 && addr <= 0xFF3F {
		return s.ch3.wave[addr-0xFF30]
	}
	return 0xFF
}

func (s *Sound) WriteRegister(addr uint16, v uint8) {
	if !s.powerOn && addr != 0xFF26 && !(addr >= 0xFF30 && addr <= 0xFF3F) {
		return
	}
	switch addr {
	case 0xFF10:
		s.ch1.sweepPeriod = (v >> 4) & 0x07
		s.ch1.sweepUp = v&0x08 == 0
		s.ch1.sweepShift = v & 0x07
	case 0xFF11:
		s.ch1.duty = v >> 6
		s.ch1.lengthLoad = v & 0x3F
		s.ch1.lengthTimer = uint16(64 - s.ch1.lengthLoad)
	case 0xFF12:
		s.ch1.volumeInit = v >> 4
		s.ch1.envUp = v&0x08 != 0
		s.ch1.envPeriod = v & 0x07
	case 0xFF13:
		s.ch1.freq = s.ch1.freq&0x700 | uint16(v)
	case 0xFF14:
		s.ch1.freq = s.ch1.freq&0xFF | uint16(v&0x07)<<8
		s.ch1.lengthOn = v&0x40 != 0
		if v&0x80 != 0 {
			s.triggerSquare(&s.ch1)
		}
	case 0xFF16:
		s.ch2.duty = v >> 6
		s.ch2.lengthLoad = v & 0x3F
		s.ch2.lengthTimer = uint16(64 - s.ch2.lengthLoad)
	case 0xFF17:
		s.ch2.volumeInit = v >> 4
		s.ch2.envUp = v&0x08 != 0
		s.ch2.envPeriod = v & 0x07
	case 0xFF18:
		s.ch2.freq = s.ch2.freq&0x700 | uint16(v)
	case 0xFF19:
		s.ch2.freq = s.ch2.freq&0xFF | uint16(v&0x07)<<8
		s.ch2.lengthOn = v&0x40 != 0
		if v&0x80 != 0 {
			s.triggerSquare(&s.ch2)
		}
	case 0xFF1A:
		s.ch3.dacOn = v&0x80 != 0
	case 0xFF1B:
		s.ch3.lengthLoad = uint16(v)
		s.ch3.lengthTimer = 256 - s.ch3.lengthLoad
	case 0xFF1C:
		s.ch3.volumeCode = (v >> 5) & 0x03
	case 0xFF1D:
		s.ch3.freq = s.ch3.freq&0x700 | uint16(v)
	case 0xFF1E:
		s.ch3.freq = s.ch3.freq&0xFF | uint16(v&0x07)<<8
		s.ch3.lengthOn = v&0x40 != 0
		if v&0x80 != 0 {
			s.ch3.enabled = s.ch3.dacOn
		}
	case 0xFF20:
		s.ch4.lengthLoad = v & 0x3F
		s.ch4.lengthTimer = uint16(64 - s.ch4.lengthLoad)
	case 0xFF21:
		s.ch4.volumeInit = v >> 4
		s.ch4.envUp = v&0x08 != 0
		s.ch4.envPeriod = v & 0x07
	case 0xFF22:
		s.ch4.clockShift = v >> 4
		s.ch4.widthMode7 = v&0x08 != 0
		s.ch4.divisor = v & 0x07
	case 0xFF23:
		s.ch4.lengthOn = v&0x40 != 0
		if v&0x80 != 0 {
			s.triggerNoise()
		}
	case 0xFF24:
		s.nr50 = v
	case 0xFF25:
		s.nr51 = v
	case 0xFF26:
		s.powerOn = v&0x80 != 0
		if !s.powerOn {
			s.ch1, s.ch2, s.ch3, s.ch4 = squareChannel{hasSweep: true}, squareChannel{}, waveChannel{wave: s.ch3.wave}, noiseChannel{}
		}
	default:
		if addr >= 0xFF30 && addr <= 0xFF3F {
			s.ch3.wave[addr-0xFF30] = v
		}
	}
}

func (s *Sound) triggerSquare(c *squareChannel) {
	c.enabled = true
	c.volume = c.volumeInit
	c.envTimer = c.envPeriod
	c.sweepTimer = c.sweepPeriod
	if c.lengthTimer == 0 {
		c.lengthTimer = 64
	}
}

func (s *Sound) triggerNoise() {
	s.ch4.enabled = true
	s.ch4.volume = s.ch4.volumeInit
	s.ch4.envTimer = s.ch4.envPeriod
	s.ch4.lfsr = 0x7FFF
	if s.ch4.lengthTimer == 0 {
		s.ch4.lengthTimer = 64
	}
}

func (s *Sound) nr52() uint8 {
	var v uint8 = 0x70
	if s.powerOn {
		v |= 0x80
	}
	if s.ch1.enabled {
		v |= 0x01
	}
	if s.ch2.enabled {
		v |= 0x02
	}
	if s.ch3.enabled {
		v |= 0x04
	}
	if s.ch4.enabled {
		v |= 0x08
	}
	return v
}

func ch2or1(s *Sound, addr uint16) *squareChannel {
	if addr == 0xFF11 || addr == 0xFF12 || addr == 0xFF14 {
		return &s.ch1
	}
	return &s.ch2
}

func packSweep(c squareChannel) uint8 {
	v := c.sweepPeriod << 4
	if !c.sweepUp {
		v |= 0x08
	}
	return 0x80 | v | c.sweepShift
}

func packDutyLen(c *squareChannel) uint8 { return c.duty<<6 | 0x3F }

func packEnvelope(up bool, period, init uint8) uint8 {
	v := init<<4 | period
	if up {
		v |= 0x08
	}
	return v
}

func packFreqHi(lengthOn bool) uint8 {
	if lengthOn {
		return 0xBF
	}
	return 0x9F
}

func boolBit(b bool, pos uint8) uint8 {
	if b {
		return 1 << pos
	}
	return 0
}

// SoundSnapshot is the gob-friendly save-state form of Sound state. Each
// channel's unexported fields are mirrored field-by-field since gob only
// walks exported struct fields.
type SoundSnapshot struct {
	CH1, CH2           SquareChannelSnapshot
	CH3                WaveChannelSnapshot
	CH4                NoiseChannelSnapshot
	NR50, NR51         uint8
	PowerOn            bool
	SeqStep            int
	LastSync           uint64
	Events             []SchedulerEntrySnapshot[soundEvent]
}

type SquareChannelSnapshot struct {
	Duty, VolumeInit                     uint8
	EnvUp                                bool
	EnvPeriod                            uint8
	Freq                                 uint16
	LengthLoad                           uint8
	LengthOn                             bool
	HasSweep                             bool
	SweepPeriod, SweepShift              uint8
	SweepUp                              bool
	Enabled                              bool
	Volume                               uint8
	LengthTimer                          uint16
	EnvTimer, SweepTimer                 uint8
	Phase                                float64
}

type WaveChannelSnapshot struct {
	DacOn       bool
	LengthLoad  uint16
	VolumeCode  uint8
	Freq        uint16
	LengthOn    bool
	Wave        [16]uint8
	Enabled     bool
	LengthTimer uint16
	Phase       float64
	SamplePos   int
}

type NoiseChannelSnapshot struct {
	VolumeInit  uint8
	EnvUp       bool
	EnvPeriod   uint8
	ClockShift  uint8
	WidthMode7  bool
	Divisor     uint8
	LengthLoad  uint8
	LengthOn    bool
	Enabled     bool
	Volume      uint8
	LengthTimer uint16
	EnvTimer    uint8
	Lfsr        uint16
	Phase       float64
}

func snapshotSquare(c squareChannel) SquareChannelSnapshot {
	return SquareChannelSnapshot{
		Duty: c.duty, VolumeInit: c.volumeInit, EnvUp: c.envUp, EnvPeriod: c.envPeriod,
		Freq: c.freq, LengthLoad: c.lengthLoad, LengthOn: c.lengthOn, HasSweep: c.hasSweep,
		SweepPeriod: c.sweepPeriod, SweepUp: c.sweepUp, SweepShift: c.sweepShift,
		Enabled: c.enabled, Volume: c.volume, LengthTimer: c.lengthTimer,
		EnvTimer: c.envTimer, SweepTimer: c.sweepTimer, Phase: c.phase,
	}
}

func restoreSquare(s SquareChannelSnapshot) squareChannel {
	return squareChannel{
		duty: s.Duty, volumeInit: s.VolumeInit, envUp: s.EnvUp, envPeriod: s.EnvPeriod,
		freq: s.Freq, lengthLoad: s.LengthLoad, lengthOn: s.LengthOn, hasSweep: s.HasSweep,
		sweepPeriod: s.SweepPeriod, sweepUp: s.SweepUp, sweepShift: s.SweepShift,
		enabled: s.Enabled, volume: s.Volume, lengthTimer: s.LengthTimer,
		envTimer: s.EnvTimer, sweepTimer: s.SweepTimer, phase: s.Phase,
	}
}

func snapshotWave(c waveChannel) WaveChannelSnapshot {
	return WaveChannelSnapshot{
		DacOn: c.dacOn, LengthLoad: c.lengthLoad, VolumeCode: c.volumeCode, Freq: c.freq,
		LengthOn: c.lengthOn, Wave: c.wave, Enabled: c.enabled, LengthTimer: c.lengthTimer,
		Phase: c.phase, SamplePos: c.samplePos,
	}
}

func restoreWave(s WaveChannelSnapshot) waveChannel {
	return waveChannel{
		dacOn: s.DacOn, lengthLoad: s.LengthLoad, volumeCode: s.VolumeCode, freq: s.Freq,
		lengthOn: s.LengthOn, wave: s.Wave, enabled: s.Enabled, lengthTimer: s.LengthTimer,
		phase: s.Phase, samplePos: s.SamplePos,
	}
}

func snapshotNoise(c noiseChannel) NoiseChannelSnapshot {
	return NoiseChannelSnapshot{
		VolumeInit: c.volumeInit, EnvUp: c.envUp, EnvPeriod: c.envPeriod, ClockShift: c.clockShift,
		WidthMode7: c.widthMode7, Divisor: c.divisor, LengthLoad: c.lengthLoad, LengthOn: c.lengthOn,
		Enabled: c.enabled, Volume: c.volume, LengthTimer: c.lengthTimer, EnvTimer: c.envTimer,
		Lfsr: c.lfsr, Phase: c.phase,
	}
}

func restoreNoise(s NoiseChannelSnapshot) noiseChannel {
	return noiseChannel{
		volumeInit: s.VolumeInit, envUp: s.EnvUp, envPeriod: s.EnvPeriod, clockShift: s.ClockShift,
		widthMode7: s.WidthMode7, divisor: s.Divisor, lengthLoad: s.LengthLoad, lengthOn: s.LengthOn,
		enabled: s.Enabled, volume: s.Volume, lengthTimer: s.LengthTimer, envTimer: s.EnvTimer,
		lfsr: s.Lfsr, phase: s.Phase,
	}
}

func (s *Sound) Snapshot() SoundSnapshot {
	return SoundSnapshot{
		CH1: snapshotSquare(s.ch1), CH2: snapshotSquare(s.ch2),
		CH3: snapshotWave(s.ch3), CH4: snapshotNoise(s.ch4),
		NR50: s.nr50, NR51: s.nr51, PowerOn: s.powerOn,
		SeqStep: s.seqStep, LastSync: s.lastSync, Events: s.seq.Snapshot(),
	}
}

func (s *Sound) Restore(snap SoundSnapshot) {
	s.ch1 = restoreSquare(snap.CH1)
	s.ch2 = restoreSquare(snap.CH2)
	s.ch3 = restoreWave(snap.CH3)
	s.ch4 = restoreNoise(snap.CH4)
	s.nr50, s.nr51, s.powerOn = snap.NR50, snap.NR51, snap.PowerOn
	s.seqStep, s.lastSync = snap.SeqStep, snap.LastSync
	s.seq.Restore(snap.Events)
}
