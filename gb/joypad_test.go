package gb

import "testing"

// TestJoypadSelectsDirectionRow: clearing bit 4 (select bits are
// active-low) exposes the direction row in the low nibble.
func TestJoypadSelectsDirectionRow(t *testing.T) {
	j := newJoypad(&Interrupts{})
	j.reset()
	j.WriteRegister(0x20) // bit4=0 selects directions, bit5=1 deselects actions

	j.Poll(JoyKeys{Right: true})
	if got := j.ReadRegister(); got&0x0F != 0x0E {
		t.Fatalf("JOYP low nibble = %#02x, want 0x0E (Right pressed)", got&0x0F)
	}
}

// TestJoypadSelectsActionRow covers the action-button row.
func TestJoypadSelectsActionRow(t *testing.T) {
	j := newJoypad(&Interrupts{})
	j.reset()
	j.WriteRegister(0x10) // bit5=0 selects actions, bit4=1 deselects directions

	j.Poll(JoyKeys{A: true, Start: true})
	if got := j.ReadRegister(); got&0x0F != 0x06 {
		t.Fatalf("JOYP low nibble = %#02x, want 0x06 (A and Start pressed)", got&0x0F)
	}
}

// TestJoypadInterruptOnPress: a key going from released to pressed
// while its row is selected requests the Joypad interrupt.
func TestJoypadInterruptOnPress(t *testing.T) {
	interrupts := &Interrupts{}
	j := newJoypad(interrupts)
	j.reset()
	j.WriteRegister(0x20) // direction row

	j.Poll(JoyKeys{}) // nothing pressed yet
	if interrupts.IF&IntBitJoypad != 0 {
		t.Fatal("interrupt requested with no keys pressed")
	}

	j.Poll(JoyKeys{Down: true})
	if interrupts.IF&IntBitJoypad == 0 {
		t.Fatal("interrupt not requested on a 1->0 transition")
	}
}

// TestJoypadNoInterruptOnRelease covers the converse: a 0->1 transition
// (key release) never requests the interrupt.
func TestJoypadNoInterruptOnRelease(t *testing.T) {
	interrupts := &Interrupts{}
	j := newJoypad(interrupts)
	j.reset()
	j.WriteRegister(0x20) // direction row

	j.Poll(JoyKeys{Down: true})
	interrupts.IF = 0 // clear whatever the press itself requested

	j.Poll(JoyKeys{}) // release
	if interrupts.IF&IntBitJoypad != 0 {
		t.Fatal("interrupt requested on key release, want only on press")
	}
}

// TestJoypadHighBitsAlwaysSet covers "bits 6-7 always read 1".
func TestJoypadHighBitsAlwaysSet(t *testing.T) {
	j := newJoypad(&Interrupts{})
	j.reset()
	if got := j.ReadRegister(); got&0xC0 != 0xC0 {
		t.Fatalf("JOYP bits 6-7 = %#02x, want 0xC0 set", got&0xC0)
	}
}
