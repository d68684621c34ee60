// Package midicc opens a MIDI output and dispatches the 8 macro values as
// Control Change messages. It owns port discovery and message pacing; the
// values themselves come from the macro engine.
package midicc

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DefaultInterMessageDelay spaces CC messages so slow synth UIs keep up.
const DefaultInterMessageDelay = 2 * time.Millisecond

// OutPortNames returns the names of all available MIDI outputs.
func OutPortNames() []string {
	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// FindOutPort resolves a user-supplied name to a port index, preferring an
// exact match, then a case-insensitive exact match, then a substring match.
func FindOutPort(query string) (int, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return -1, fmt.Errorf("no MIDI outputs available")
	}

	for _, out := range outs {
		if out.String() == query {
			return out.Number(), nil
		}
	}
	for _, out := range outs {
		if strings.EqualFold(out.String(), query) {
			return out.Number(), nil
		}
	}
	lower := strings.ToLower(query)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out.Number(), nil
		}
	}
	return -1, fmt.Errorf("no MIDI output matches %q", query)
}

// GuessOutPort picks a likely destination when none was given: an IAC bus
// first, then anything with "Massive" or "Virtual" in the name, then the
// first port.
func GuessOutPort() (int, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return -1, fmt.Errorf("no MIDI outputs available")
	}
	for _, hint := range []string{"IAC", "Massive", "Virtual"} {
		for _, out := range outs {
			if strings.Contains(out.String(), hint) {
				return out.Number(), nil
			}
		}
	}
	return outs[0].Number(), nil
}

// Dispatcher is an opened MIDI output port.
type Dispatcher struct {
	out drivers.Out
}

// Open opens the MIDI output with the given port index. The returned closer
// releases the port and the driver.
func Open(portIndex int) (*Dispatcher, func(), error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, nil, err
	}
	if portIndex < 0 || portIndex >= len(outs) {
		return nil, nil, fmt.Errorf("output port index %d out of range", portIndex)
	}

	out := outs[portIndex]
	if err := out.Open(); err != nil {
		return nil, nil, err
	}

	closer := func() {
		_ = out.Close()
		drivers.Close()
	}
	log.Println("Opened MIDI output port", out.String())
	return &Dispatcher{out: out}, closer, nil
}

// Send transmits a single MIDI message.
func (d *Dispatcher) Send(msg midi.Message) error {
	if !d.out.IsOpen() {
		if err := d.out.Open(); err != nil {
			return err
		}
	}
	return d.out.Send(msg.Bytes())
}

// SendCC transmits one Control Change message.
func (d *Dispatcher) SendCC(channel, cc uint8, value int) error {
	return d.Send(midi.ControlChange(channel, cc, clamp7(value)))
}

// SendCCBatch transmits (cc, value) pairs with a small delay in between.
func (d *Dispatcher) SendCCBatch(channel uint8, pairs [][2]int, delay time.Duration) error {
	for _, pair := range pairs {
		if err := d.SendCC(channel, clamp7(pair[0]), pair[1]); err != nil {
			return fmt.Errorf("cc %d send failed: %w", pair[0], err)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}

// SendMacros dispatches up to 8 macro values paired with their CC numbers.
// A short ccMap or values slice is padded with the 1..8 defaults and zeros.
func (d *Dispatcher) SendMacros(values []int, channel uint8, ccMap []int, delay time.Duration) error {
	pairs := MacroPairs(values, ccMap)
	return d.SendCCBatch(channel, pairs, delay)
}

// MacroPairs pairs macro values with CC numbers, normalizing both sides to
// exactly 8 entries.
func MacroPairs(values []int, ccMap []int) [][2]int {
	ccs := DefaultCCAssignments()
	if len(ccMap) >= MacroCount {
		copy(ccs, ccMap[:MacroCount])
	}
	pairs := make([][2]int, MacroCount)
	for i := 0; i < MacroCount; i++ {
		v := 0
		if i < len(values) {
			v = int(clamp7(values[i]))
		}
		pairs[i] = [2]int{ccs[i], v}
	}
	return pairs
}

func clamp7(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
