package gb

// timerEvent tags the one kind of event the Timer schedules: the next
// TIMA increment. Its own Scheduler[timerEvent] instantiation keeps it
// independent of the PPU's event tag type.
type timerEvent uint8

const timerEventIncrement timerEvent = 0

// timerRatePeriods gives the CPU-cycle period for each TAC rate-select
// value (4096/262144/65536/16384 Hz against a 4.194304 MHz clock).
var timerRatePeriods = [4]uint64{1024, 16, 64, 256}

// tacMask: only TAC's low three bits (rate select + enable) exist; the
// rest read back 1 and ignore writes.
type tacMask struct{}

func (tacMask) ReadMask() uint8  { return 0x07 }
func (tacMask) WriteMask() uint8 { return 0x07 }

// Timer is DIV plus TIMA/TMA/TAC. DIV is derived from a
// free-running 16-bit counter (DIV is its high byte) rather than being
// its own independent accumulator, matching real hardware; TIMA overflow
// is event-scheduled rather than polled every cycle.
type Timer struct {
	internalCounter uint16
	lastSync        uint64

	tima uint8
	tma  uint8
	tac  BitFlagRegister[tacMask]

	scheduler  *Scheduler[timerEvent]
	interrupts *Interrupts
}

func newTimer(interrupts *Interrupts) *Timer {
	return &Timer{scheduler: NewScheduler[timerEvent](), interrupts: interrupts}
}

func (t *Timer) reset() {
	t.internalCounter = 0
	t.lastSync = 0
	t.tima, t.tma = 0, 0
	t.tac.SetRaw(0)
	t.scheduler.Clear()
}

func (t *Timer) enabled() bool  { return t.tac.Bit(2) }
func (t *Timer) period() uint64 { return timerRatePeriods[t.tac.Field(0, 2)] }

// Advance brings DIV up to date with the current elapsed-cycle count and
// drains any due TIMA-increment events.
func (t *Timer) Advance(now uint64) {
	if now > t.lastSync {
		t.internalCounter += uint16(now - t.lastSync)
		t.lastSync = now
	}
	t.scheduler.Drain(now, func(event timerEvent, at uint64) {
		t.tima++
		if t.tima == 0 {
			t.tima = t.tma
			t.interrupts.Request(IntBitTimer)
		}
		if t.enabled() {
			t.scheduler.Schedule(at+t.period(), timerEventIncrement)
		}
	})
}

func (t *Timer) div() uint8 { return uint8(t.internalCounter >> 8) }

// WriteDIV resets the divider (any write to DIV zeroes it).
func (t *Timer) WriteDIV(now uint64) {
	t.Advance(now)
	t.internalCounter = 0
}

func (t *Timer) WriteTIMA(v uint8) { t.tima = v }
func (t *Timer) WriteTMA(v uint8)  { t.tma = v }

// WriteTAC is a read-with-observer register: changing the
// enable bit or the rate reschedules the next increment.
func (t *Timer) WriteTAC(now uint64, v uint8) {
	t.Advance(now)
	wasEnabled := t.enabled()
	oldPeriod := t.period()
	t.tac.Write(v)
	switch {
	case t.enabled() && (!wasEnabled || t.period() != oldPeriod):
		t.scheduler.Clear()
		t.scheduler.Schedule(now+t.period(), timerEventIncrement)
	case !t.enabled() && wasEnabled:
		t.scheduler.Clear()
	}
}

// TimerSnapshot is the gob-friendly save-state form of Timer state.
type TimerSnapshot struct {
	InternalCounter uint16
	LastSync        uint64
	TIMA, TMA, TAC  uint8
	Events          []SchedulerEntrySnapshot[timerEvent]
}

func (t *Timer) Snapshot() TimerSnapshot {
	return TimerSnapshot{
		InternalCounter: t.internalCounter,
		LastSync:        t.lastSync,
		TIMA:            t.tima,
		TMA:             t.tma,
		TAC:             t.tac.Raw(),
		Events:          t.scheduler.Snapshot(),
	}
}

func (t *Timer) Restore(s TimerSnapshot) {
	t.internalCounter = s.InternalCounter
	t.lastSync = s.LastSync
	t.tima, t.tma = s.TIMA, s.TMA
	t.tac.SetRaw(s.TAC)
	t.scheduler.Restore(s.Events)
}

func (t *Timer) ReadRegister(addr uint16, now uint64) uint8 {
	t.Advance(now)
	switch addr {
	case 0xFF04:
		return t.div()
	case 0xFF05:
		return t.tima
	case 0xFF06:
		return t.tma
	case 0xFF07:
		return t.tac.Read()
	}
	return 0xFF
}
