package logic

import "time"

// DefaultMaxFailures is the number of consecutive rejections that locks the
// button path.
const DefaultMaxFailures = 5

// Result is the outcome of a disarm attempt.
type Result int

const (
	Rejected Result = iota
	Accepted
	// Blocked means the attempt was not evaluated because the system is locked.
	Blocked
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Blocked:
		return "blocked"
	default:
		return "rejected"
	}
}

// Verifier compares disarm attempts against the stored code and tracks
// consecutive failures.
type Verifier struct {
	maxFailures      int
	lockBlocksSerial bool
}

// NewVerifier creates a verifier that locks after maxFailures rejections.
// When lockBlocksSerial is false the serial path keeps evaluating attempts
// while locked, as the button path alone is gated by the lock.
func NewVerifier(maxFailures int, lockBlocksSerial bool) *Verifier {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	return &Verifier{
		maxFailures:      maxFailures,
		lockBlocksSerial: lockBlocksSerial,
	}
}

// Submit compares attempt with the stored code, position by position.
func (v *Verifier) Submit(s *State, attempt CodeSequence, src Source, now time.Time) (Result, []Event) {
	return v.apply(s, attempt == s.Code, src, now)
}

// SubmitSymbols is the serial variant of Submit. Each symbol must be '0' or
// '1'; anything else counts as a mismatch for its position.
func (v *Verifier) SubmitSymbols(s *State, symbols [KeyCount]byte, now time.Time) (Result, []Event) {
	if v.lockBlocksSerial && s.Locked {
		return Blocked, nil
	}

	match := true
	for i, sym := range symbols {
		pressed, ok := ParseSymbol(sym)
		if !ok || pressed != s.Code[i] {
			match = false
		}
	}
	return v.apply(s, match, SourceSerial, now)
}

// ButtonUpdate runs the button path for one tick. It does nothing once the
// system is locked. Holding all four keys with enter released clears the
// incorrect-code indicator. An attempt is evaluated only while the alarm is
// active, enter is held and the indicator is off, so a held enter button
// cannot fire repeated comparisons.
func (v *Verifier) ButtonUpdate(s *State, in Inputs) []Event {
	if s.Locked {
		return nil
	}

	if allPressed(in.Keys) && !in.Enter {
		s.IncorrectCode = false
	}

	if !in.Enter || s.IncorrectCode || !s.Active() {
		return nil
	}

	_, events := v.Submit(s, in.Keys, SourceButtons, in.Time)
	return events
}

// SetCode overwrites the stored code for every position holding a valid
// symbol. Invalid symbols leave their position unchanged.
func (v *Verifier) SetCode(s *State, symbols [KeyCount]byte, now time.Time) []Event {
	for i, sym := range symbols {
		if pressed, ok := ParseSymbol(sym); ok {
			s.Code[i] = pressed
		}
	}
	return []Event{newEvent(s, EventCodeChanged, SourceSerial, now)}
}

func (v *Verifier) apply(s *State, match bool, src Source, now time.Time) (Result, []Event) {
	if match {
		Disarm(s)
		s.IncorrectCode = false
		s.Failures = 0
		s.Locked = false
		return Accepted, []Event{newEvent(s, EventCodeAccepted, src, now)}
	}

	s.IncorrectCode = true
	s.Failures++
	events := []Event{newEvent(s, EventCodeRejected, src, now)}
	if !s.Locked && s.Failures >= v.maxFailures {
		s.Locked = true
		events = append(events, newEvent(s, EventLocked, src, now))
	}
	return Rejected, events
}

// ParseSymbol maps '1' to pressed and '0' to released.
func ParseSymbol(b byte) (pressed bool, ok bool) {
	switch b {
	case '1':
		return true, true
	case '0':
		return false, true
	default:
		return false, false
	}
}

func allPressed(keys CodeSequence) bool {
	for _, k := range keys {
		if !k {
			return false
		}
	}
	return true
}
