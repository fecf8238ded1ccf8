package ov13b10

import (
	"bytes"
	"errors"
	"testing"
)

func TestStartStreamingSequence(t *testing.T) {

	d, b := newTestDevice(t)

	if err := d.StartStreaming(); err != nil {
		t.Fatal(err)
	}

	modeLen := len(mode4208x3120Regs) - 1
	want := modeLen + 6 // controls setup pass + mode control

	if len(b.writes) != want {
		t.Fatalf("got %d writes, want %d", len(b.writes), want)
	}

	// the active mode's program goes out first, in order
	for i := 0; i < modeLen; i++ {
		if b.writes[i].addr != mode4208x3120Regs[i].addr {
			t.Fatalf("write %d to 0x%04x, want 0x%04x",
				i, b.writes[i].addr, mode4208x3120Regs[i].addr)
		}
	}

	// then every held control value, then the streaming bit
	wantTail := []uint16{
		REG_EXPOSURE,
		REG_GAIN_H,
		REG_GAIN_L,
		REG_VTS,
		REG_TEST_PATTERN,
		REG_CTRL_MODE,
	}

	for i, reg := range wantTail {
		if got := b.writes[modeLen+i].addr; got != reg {
			t.Fatalf("tail write %d to 0x%04x, want 0x%04x", i, got, reg)
		}
	}

	last := b.writes[len(b.writes)-1]

	if !bytes.Equal(last.data, []byte{MODE_STREAMING}) {
		t.Fatalf("mode control written as %v, want [01]", last.data)
	}

	if !d.Streaming() {
		t.Fatal("device not marked streaming")
	}
}

func TestStartStreamingIdempotent(t *testing.T) {

	d, b := newTestDevice(t)

	if err := d.StartStreaming(); err != nil {
		t.Fatal(err)
	}

	writes := len(b.writes)

	if err := d.StartStreaming(); err != nil {
		t.Fatal(err)
	}

	if len(b.writes) != writes {
		t.Fatal("second StartStreaming must not issue writes")
	}
}

func TestStartStreamingAbortsOnError(t *testing.T) {

	d, b := newTestDevice(t)
	b.failAt = 3

	if err := d.StartStreaming(); !errors.Is(err, ErrBus) {
		t.Fatalf("expected ErrBus, got %v", err)
	}

	if d.Streaming() {
		t.Fatal("device must stay stopped after a failed start")
	}

	// entries after the failed write stay unsent
	if len(b.writes) != 3 {
		t.Fatalf("got %d writes, want 3", len(b.writes))
	}
}

func TestStopStreamingOnBusError(t *testing.T) {

	d, b := newTestDevice(t)

	if err := d.StartStreaming(); err != nil {
		t.Fatal(err)
	}

	// halting is best effort, the write failure is swallowed
	b.writeErr = errors.New("nack")
	d.StopStreaming()

	if d.Streaming() {
		t.Fatal("device must be stopped even when the standby write fails")
	}
}

func TestStopStreamingIdempotent(t *testing.T) {

	d, b := newTestDevice(t)

	if err := d.StartStreaming(); err != nil {
		t.Fatal(err)
	}

	b.writes = nil

	d.StopStreaming()
	d.StopStreaming()

	if got := len(b.writesTo(REG_CTRL_MODE)); got != 1 {
		t.Fatalf("got %d mode control writes, want 1", got)
	}
}

func TestQuickStream(t *testing.T) {

	d, b := newTestDevice(t)

	if err := d.QuickStream(true); err != nil {
		t.Fatal(err)
	}

	if err := d.QuickStream(false); err != nil {
		t.Fatal(err)
	}

	writes := b.writesTo(REG_CTRL_MODE)

	if len(writes) != 2 {
		t.Fatalf("got %d mode control writes, want 2", len(writes))
	}

	if writes[0].data[0] != MODE_STREAMING || writes[1].data[0] != MODE_SW_STANDBY {
		t.Fatalf("unexpected mode control values: %v", writes)
	}

	if d.Streaming() {
		t.Fatal("quick stream must not change the tracked stream state")
	}

	if err := d.PowerOff(); err != nil {
		t.Fatal(err)
	}

	if err := d.QuickStream(true); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady while off, got %v", err)
	}
}
