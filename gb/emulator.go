package gb

import "fmt"

// Options configures a Machine at construction: nothing in the core
// reads flags or env vars directly, all knobs arrive through this
// struct.
type Options struct {
	// PerfEnabled turns on a Trace report every 100000 instructions:
	// the instruction count so far and the cycles since the last report.
	PerfEnabled bool
	// Trace, if non-nil, receives structured progress lines; the host
	// wires it to whatever logging library it uses. The core never logs
	// directly.
	Trace func(msg string, args ...any)
	// SampleRate configures Sound.GenerateSamples' output rate.
	SampleRate int
}

// Machine is the top-level emulator: CPU, bus-attached peripherals, and
// the tick loop that interleaves CPU steps, scheduler drains, DMA and
// interrupt delivery.
type Machine struct {
	CPU *CPU
	Bus *Bus

	joypadProvider JoypadProvider
	opts           Options

	instructionCount uint64
	lastPerfCycles   uint64
}

// NewMachine wires a cartridge into a fresh Bus and CPU and resets both
// to post-boot-ROM state.
func NewMachine(cart GamePak, opts Options) *Machine {
	bus := NewBus(cart)
	cpu := NewCPU(bus)
	cpu.Reset()
	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	bus.Sound().SetSampleRate(opts.SampleRate)
	return &Machine{CPU: cpu, Bus: bus, opts: opts}
}

// AttachRenderBackend installs the PPU's pixel sink.
func (m *Machine) AttachRenderBackend(backend RenderBackend) {
	m.Bus.PPU().AttachBackend(backend)
}

// AttachJoypadProvider installs the input source polled once per Tick.
func (m *Machine) AttachJoypadProvider(p JoypadProvider) {
	m.joypadProvider = p
}

// Tick executes exactly one CPU instruction (or one HALT-idle step) and
// then drains every peripheral event up to the CPU's new elapsed-cycle
// count: interrupt check, CPU step, scheduler drain, DMA, input poll.
func (m *Machine) Tick() error {
	m.Bus.SetNow(m.CPU.Cycles)
	m.CPU.CheckAndDispatchInterrupt()

	m.Bus.SetNow(m.CPU.Cycles)
	if err := m.CPU.Step(); err != nil {
		return err
	}
	if m.CPU.Crashed() {
		return &CrashError{Operation: "Tick", Details: m.CPU.CrashMessage, PC: m.CPU.Regs.PC}
	}

	m.Bus.Advance(m.CPU.Cycles)

	if m.joypadProvider != nil {
		m.Bus.Joypad().Poll(m.joypadProvider.Poll(m.CPU.Cycles))
	}

	m.instructionCount++
	if m.opts.PerfEnabled && m.opts.Trace != nil && m.instructionCount%100000 == 0 {
		delta := m.CPU.Cycles - m.lastPerfCycles
		m.lastPerfCycles = m.CPU.Cycles
		m.opts.Trace(fmt.Sprintf("perf: %d instructions, %d cycles since last report", m.instructionCount, delta))
	}
	return nil
}

// Run ticks until the CPU crashes or an external stop signal fires.
func (m *Machine) Run(stop func() bool) error {
	for {
		if stop != nil && stop() {
			return nil
		}
		if err := m.Tick(); err != nil {
			return err
		}
	}
}
