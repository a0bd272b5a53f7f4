package platform

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// SampleSource is the pull side of the core's audio output: the mixer
// hands out interleaved int16 stereo frames on demand. gb.Sound
// satisfies this directly via GenerateSamples.
type SampleSource interface {
	GenerateSamples(n int) []int16
}

// OtoAudio streams SampleSource output through an oto.Player: it
// implements io.Reader and lets oto pull stereo int16 PCM from the
// mixer on demand.
type OtoAudio struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	source SampleSource
	rate   int
}

// NewOtoAudio opens the oto context at sampleRate and blocks until it
// reports ready.
func NewOtoAudio(sampleRate int, source SampleSource) (*OtoAudio, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("pocketgb: open audio context: %w", err)
	}
	<-ready

	a := &OtoAudio{ctx: ctx, source: source, rate: sampleRate}
	a.player = ctx.NewPlayer(a)
	return a, nil
}

// Read implements io.Reader, pulling fresh PCM frames from the mixer on
// every call.
func (a *OtoAudio) Read(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	frames := len(p) / 4 // 2 channels * 2 bytes/sample
	if frames == 0 {
		return 0, nil
	}
	samples := a.source.GenerateSamples(frames)

	n := 0
	for _, s := range samples {
		binary.LittleEndian.PutUint16(p[n:], uint16(s))
		n += 2
	}
	return n, nil
}

// Play starts streaming audio.
func (a *OtoAudio) Play() { a.player.Play() }

// Close stops playback and releases the player.
func (a *OtoAudio) Close() error { return a.player.Close() }
