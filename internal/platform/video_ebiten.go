// Package platform holds the ambient/back-end adapters the core never
// imports itself: ebiten video, oto audio, and an OS-filesystem
// PersistentStorage. None of this is core emulation logic; it is the
// thin glue a host binary (cmd/pocketgb) wires to gb.Machine.
package platform

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	"github.com/fenwick-systems/pocketgb/gb"
)

const (
	screenWidth  = 160
	screenHeight = 144
)

// EbitenVideo implements gb.RenderBackend and gb.BufferSaver by
// rasterizing into an in-memory RGBA buffer the size of the real LCD,
// then blitting an integer-scaled copy into an ebiten.Image once per
// frame.
type EbitenVideo struct {
	mu     sync.Mutex
	pixels *image.RGBA
	scale  int
	title  string
}

// NewEbitenVideo allocates the fixed 160x144 backing buffer; scale sets
// the integer window-magnification factor applied at blit time.
func NewEbitenVideo(scale int, title string) *EbitenVideo {
	if scale < 1 {
		scale = 1
	}
	return &EbitenVideo{
		pixels: image.NewRGBA(image.Rect(0, 0, screenWidth, screenHeight)),
		scale:  scale,
		title:  title,
	}
}

// ColorPixel implements gb.RenderBackend.
func (v *EbitenVideo) ColorPixel(x, y int32, r, g, b uint8) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if x < 0 || y < 0 || int(x) >= screenWidth || int(y) >= screenHeight {
		return
	}
	v.pixels.SetRGBA(int(x), int(y), color.RGBA{R: r, G: g, B: b, A: 0xFF})
}

// Present implements gb.RenderBackend; ebiten's own Draw call picks up
// the buffer on its next tick, so Present is a no-op synchronization
// point here (the mutex already serializes CPU-thread writes against
// ebiten's render-thread reads).
func (v *EbitenVideo) Present() {}

// SaveBuffer implements gb.BufferSaver, writing an upscaled PNG of the
// current frame. Uses the same x/image/draw scaling (scaledImageLocked) as
// Draw's window blit, so a screenshot matches what's on screen pixel-for-pixel.
func (v *EbitenVideo) SaveBuffer(path string) error {
	v.mu.Lock()
	scaled := v.scaledImageLocked()
	v.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pocketgb: save screenshot: %w", err)
	}
	defer f.Close()
	return png.Encode(f, scaled)
}

func (v *EbitenVideo) scaledImageLocked() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, screenWidth*v.scale, screenHeight*v.scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), v.pixels, v.pixels.Bounds(), draw.Over, nil)
	return dst
}

// Run starts ebiten's game loop, blocking until the window closes. Call
// from the host's main goroutine; drive gb.Machine.Tick from a separate
// goroutine pacing itself against real time.
func (v *EbitenVideo) Run() error {
	ebiten.SetWindowSize(screenWidth*v.scale, screenHeight*v.scale)
	ebiten.SetWindowTitle(v.title)
	ebiten.SetWindowResizable(true)
	return ebiten.RunGame(v)
}

// Update implements ebiten.Game. The emulator's own tick loop runs on a
// separate goroutine paced against real time; this just watches for the
// window close signal.
func (v *EbitenVideo) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game: blit the current scaled framebuffer.
func (v *EbitenVideo) Draw(screen *ebiten.Image) {
	v.mu.Lock()
	scaled := v.scaledImageLocked()
	v.mu.Unlock()
	screen.WritePixels(scaled.Pix)
}

// Layout implements ebiten.Game.
func (v *EbitenVideo) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth * v.scale, screenHeight * v.scale
}

// EbitenJoypad polls ebiten's keyboard state for the eight DMG buttons,
// implementing gb.JoypadProvider.
type EbitenJoypad struct{}

func (EbitenJoypad) Poll(elapsedCycles uint64) gb.JoyKeys {
	return gb.JoyKeys{
		Right:  ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Left:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Up:     ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		A:      ebiten.IsKeyPressed(ebiten.KeyZ),
		B:      ebiten.IsKeyPressed(ebiten.KeyX),
		Select: ebiten.IsKeyPressed(ebiten.KeyShift),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
	}
}

// IsF11JustPressed reports a fresh F11 press, for hosts that want to
// wire a fullscreen toggle.
func IsF11JustPressed() bool { return inpututil.IsKeyJustPressed(ebiten.KeyF11) }
