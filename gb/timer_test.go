package gb

import "testing"

// TestDIVIncrementsFromCycles: DIV is the high byte of a free-running
// 16-bit counter driven purely by elapsed cycles.
func TestDIVIncrementsFromCycles(t *testing.T) {
	tm := newTimer(&Interrupts{})
	tm.reset()

	if got := tm.ReadRegister(0xFF04, 0); got != 0 {
		t.Fatalf("DIV at t=0 = %d, want 0", got)
	}
	if got := tm.ReadRegister(0xFF04, 256); got != 1 {
		t.Fatalf("DIV at t=256 = %d, want 1", got)
	}
	if got := tm.ReadRegister(0xFF04, 256*200); got != 200 {
		t.Fatalf("DIV at t=%d = %d, want 200", 256*200, got)
	}
}

// TestWriteDIVResets covers "any write to DIV resets it to 0".
func TestWriteDIVResets(t *testing.T) {
	tm := newTimer(&Interrupts{})
	tm.reset()

	tm.ReadRegister(0xFF04, 1000)
	tm.WriteDIV(1000)
	if got := tm.ReadRegister(0xFF04, 1000); got != 0 {
		t.Fatalf("DIV after write = %d, want 0", got)
	}
}

// TestTIMAOverflowReloadsFromTMAAndInterrupts: TIMA increments at the
// TAC-selected rate and on overflow reloads from TMA and requests the
// Timer interrupt.
func TestTIMAOverflowReloadsFromTMAAndInterrupts(t *testing.T) {
	interrupts := &Interrupts{}
	tm := newTimer(interrupts)
	tm.reset()

	tm.WriteTMA(0x10)
	tm.WriteTAC(0, 0x05) // enabled, rate-select 01 -> period 16 cycles
	tm.WriteTIMA(0xFF)   // one increment away from overflow

	tm.Advance(16)
	if got := tm.ReadRegister(0xFF05, 16); got != 0x10 {
		t.Fatalf("TIMA after overflow = %#02x, want reload value %#02x", got, 0x10)
	}
	if interrupts.IF&IntBitTimer == 0 {
		t.Fatal("Timer interrupt not requested on TIMA overflow")
	}
}

// TestTACDisableStopsIncrementing covers the enable bit gating TIMA.
func TestTACDisableStopsIncrementing(t *testing.T) {
	interrupts := &Interrupts{}
	tm := newTimer(interrupts)
	tm.reset()

	tm.WriteTAC(0, 0x00) // disabled
	tm.WriteTIMA(0x50)
	tm.Advance(100000)
	if got := tm.ReadRegister(0xFF05, 100000); got != 0x50 {
		t.Fatalf("TIMA advanced while TAC disabled: got %#02x, want unchanged 0x50", got)
	}
}
