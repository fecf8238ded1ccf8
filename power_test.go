package ov13b10

import (
	"errors"
	"io"
	"log"
	"reflect"
	"testing"
	"time"

	"periph.io/x/periph/conn/gpio/gpiotest"
)

// fullResources builds a resource set with every optional collaborator
// present, all appending to one shared sequence log.
func fullResources(seq *[]string) (Resources, *fakeClock, *fakeSupplies) {

	clock := &fakeClock{seq: seq}
	supplies := &fakeSupplies{seq: seq}

	res := Resources{
		Power:    &seqPin{Pin: gpiotest.Pin{N: "power"}, seq: seq},
		Reset:    &seqPin{Pin: gpiotest.Pin{N: "reset"}, seq: seq},
		Pwdn:     &seqPin{Pin: gpiotest.Pin{N: "pwdn"}, seq: seq},
		Clock:    clock,
		Supplies: supplies,
		Pins:     &fakePinMux{seq: seq},
	}

	return res, clock, supplies
}

// newUnpoweredDevice builds a device without running the power-up path.
func newUnpoweredDevice(t *testing.T, res Resources) (*OV13B10, *busRecorder) {

	t.Helper()

	b := newBusRecorder()

	d, err := new(b, res, ModuleInfo{})

	if err != nil {
		t.Fatal(err)
	}

	d.log = log.New(io.Discard, "", log.LstdFlags)

	return d, b
}

func TestPowerOnSequence(t *testing.T) {

	var seq []string
	res, _, _ := fullResources(&seq)
	d, b := newUnpoweredDevice(t, res)

	if err := d.PowerOn(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"power=High",
		"pins=default",
		"clock.SetRate",
		"clock.Enable",
		"reset=Low",
		"supplies.Enable",
		"reset=High",
		"pwdn=High",
	}

	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("power-on sequence\n got %v\nwant %v", seq, want)
	}

	// the global init program follows the rail sequence
	if len(b.writes) != len(globalRegs)-1 {
		t.Fatalf("got %d init writes, want %d", len(b.writes), len(globalRegs)-1)
	}

	if b.writes[0].addr != globalRegs[0].addr {
		t.Fatalf("first init write to 0x%04x, want 0x%04x",
			b.writes[0].addr, globalRegs[0].addr)
	}
}

func TestPowerOnClockError(t *testing.T) {

	var seq []string
	res, clock, supplies := fullResources(&seq)
	clock.setErr = errors.New("no such rate")
	d, b := newUnpoweredDevice(t, res)

	if err := d.PowerOn(); !errors.Is(err, ErrClock) {
		t.Fatalf("expected ErrClock, got %v", err)
	}

	if supplies.enabled {
		t.Fatal("supplies must not be enabled after a clock failure")
	}

	if len(b.writes) != 0 {
		t.Fatal("no register writes may happen after a failed power-up")
	}

	clock.setErr = nil
	clock.enableErr = errors.New("busy")

	if err := d.PowerOn(); !errors.Is(err, ErrClock) {
		t.Fatalf("expected ErrClock, got %v", err)
	}
}

func TestPowerOnSupplyRollback(t *testing.T) {

	var seq []string
	res, clock, supplies := fullResources(&seq)
	supplies.enableErr = errors.New("rail fault")
	d, b := newUnpoweredDevice(t, res)

	if err := d.PowerOn(); !errors.Is(err, ErrPower) {
		t.Fatalf("expected ErrPower, got %v", err)
	}

	// the clock enabled earlier in the sequence is rolled back
	if clock.enabled {
		t.Fatal("clock still enabled after supply failure")
	}

	if len(b.writes) != 0 {
		t.Fatal("no register writes may happen after a failed power-up")
	}
}

func TestPowerOnIdempotent(t *testing.T) {

	var seq []string
	res, _, _ := fullResources(&seq)
	d, b := newUnpoweredDevice(t, res)

	if err := d.PowerOn(); err != nil {
		t.Fatal(err)
	}

	writes := len(b.writes)
	events := len(seq)

	if err := d.PowerOn(); err != nil {
		t.Fatal(err)
	}

	if len(b.writes) != writes || len(seq) != events {
		t.Fatal("second PowerOn must be a no-op")
	}
}

func TestPowerOffSequence(t *testing.T) {

	var seq []string
	res, _, _ := fullResources(&seq)
	d, _ := newUnpoweredDevice(t, res)

	if err := d.PowerOn(); err != nil {
		t.Fatal(err)
	}

	seq = seq[:0]

	if err := d.PowerOff(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"pwdn=Low",
		"clock.Disable",
		"reset=Low",
		"pins=sleep",
		"power=Low",
		"supplies.Disable",
	}

	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("power-off sequence\n got %v\nwant %v", seq, want)
	}

	seq = seq[:0]

	if err := d.PowerOff(); err != nil {
		t.Fatal(err)
	}

	if len(seq) != 0 {
		t.Fatal("second PowerOff must be a no-op")
	}
}

func TestPowerOnWithoutOptionalResources(t *testing.T) {

	b := newBusRecorder()

	d, err := new(b, Resources{Clock: &fakeClock{}, Supplies: &fakeSupplies{}}, ModuleInfo{})

	if err != nil {
		t.Fatal(err)
	}

	d.log = log.New(io.Discard, "", log.LstdFlags)

	if err := d.PowerOn(); err != nil {
		t.Fatal(err)
	}

	if err := d.PowerOff(); err != nil {
		t.Fatal(err)
	}
}

func TestBootDelay(t *testing.T) {

	// 8192 cycles at 24MHz, rounded up to a whole microsecond
	if got := bootDelay(bootCycles); got != 342*time.Microsecond {
		t.Fatalf("bootDelay = %s, want 342µs", got)
	}
}
