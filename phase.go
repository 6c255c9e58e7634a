package nphase

import "fmt"

// StatusOpen is the initial phase: nothing has been sent yet.
type StatusOpen struct{}

// HeadersOpen is the phase after the status was written.  Headers
// and cookies may still be added.
type HeadersOpen struct{}

// BodyOpen is the phase after the header section was closed.
type BodyOpen struct{}

// ResponseEnded is terminal.  No further writes are possible.
type ResponseEnded struct{}

// Phase is the type set of the four phase markers.  It is only
// used as a constraint.
type Phase interface {
	StatusOpen | HeadersOpen | BodyOpen | ResponseEnded
}

// PhaseTag is the run-time name of a Phase.
type PhaseTag int

const (
	TagStatusOpen PhaseTag = iota + 1
	TagHeadersOpen
	TagBodyOpen
	TagResponseEnded
)

func (t PhaseTag) String() string {
	switch t {
	case TagStatusOpen:
		return "StatusOpen"
	case TagHeadersOpen:
		return "HeadersOpen"
	case TagBodyOpen:
		return "BodyOpen"
	case TagResponseEnded:
		return "ResponseEnded"
	default:
		return fmt.Sprintf("PhaseTag(%d)", int(t))
	}
}

// TagOf returns the PhaseTag for the phase type P.
func TagOf[P Phase]() PhaseTag {
	var p P
	switch any(p).(type) {
	case StatusOpen:
		return TagStatusOpen
	case HeadersOpen:
		return TagHeadersOpen
	case BodyOpen:
		return TagBodyOpen
	case ResponseEnded:
		return TagResponseEnded
	}
	panic("nphase: unknown phase type")
}

// ProtocolViolation is the panic value used when a connection handle
// is used out of order: a handle that was left behind by a phase
// transition, or a handle that was never opened.  It is a programming
// error and is never delivered through the error channel.
type ProtocolViolation struct {
	Op      string
	Handle  PhaseTag
	Current PhaseTag
}

func (v *ProtocolViolation) Error() string {
	if v.Current == 0 {
		return fmt.Sprintf("nphase: %s on a connection handle that was never opened", v.Op)
	}
	return fmt.Sprintf("nphase: %s on a stale %s handle, connection is in %s",
		v.Op, v.Handle, v.Current)
}
