package midicc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gitlab.com/gomidi/midi/v2"
)

var noteSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Audition plays a short C major arpeggio so a newly dispatched macro set
// can be heard immediately.
func Audition(d *Dispatcher, channel uint8) error {
	return PlayNotes(d, channel, "c4 e4 g4")
}

// PlayNotes plays a space/comma separated note sequence such as
// "c4 e4 g4 r bb3". "r" or "rest" inserts a pause.
func PlayNotes(d *Dispatcher, channel uint8, notesText string) error {
	tokens := strings.FieldsFunc(notesText, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '|'
	})
	if len(tokens) == 0 {
		return fmt.Errorf("no notes provided")
	}

	for _, tok := range tokens {
		n, isRest, err := ParseNote(tok)
		if err != nil {
			return fmt.Errorf("invalid note %q: %w", tok, err)
		}
		if isRest {
			time.Sleep(360 * time.Millisecond)
			continue
		}
		if err := d.Send(midi.NoteOn(channel, n, 100)); err != nil {
			return fmt.Errorf("note on failed for %d: %w", n, err)
		}
		time.Sleep(300 * time.Millisecond)
		if err := d.Send(midi.NoteOff(channel, n)); err != nil {
			return fmt.Errorf("note off failed for %d: %w", n, err)
		}
		time.Sleep(60 * time.Millisecond)
	}
	return nil
}

// ParseNote converts a token like "c#4" or "bb3" to a MIDI note number. The
// second return is true for a rest token.
func ParseNote(tok string) (uint8, bool, error) {
	t := strings.TrimSpace(tok)
	if strings.EqualFold(t, "r") || strings.EqualFold(t, "rest") {
		return 0, true, nil
	}
	if len(t) < 2 {
		return 0, false, fmt.Errorf("too short")
	}

	semi, ok := noteSemitones[byte(unicode.ToUpper(rune(t[0])))]
	if !ok {
		return 0, false, fmt.Errorf("invalid note letter %q", t[0])
	}

	rest := t[1:]
	switch rest[0] {
	case '#':
		semi++
		rest = rest[1:]
	case 'b', 'B':
		semi--
		rest = rest[1:]
	}
	if rest == "" {
		return 0, false, fmt.Errorf("missing octave")
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false, fmt.Errorf("invalid octave: %w", err)
	}

	n := 12*(octave+1) + semi
	if n < 0 || n > 127 {
		return 0, false, fmt.Errorf("MIDI note out of range: %d", n)
	}
	return uint8(n), false, nil
}
