package errcode

// Code is a stable, protocol-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
// Codes travel verbatim in the error field of a command response, so keep
// them short and stable.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes.
const (
	OK Code = "ok"

	// Command decode failures. None of these reach the chip.
	EmptyCommand  Code = "empty_command"
	BadSyntax     Code = "bad_syntax"
	BadSequence   Code = "bad_sequence"
	UnknownField  Code = "unknown_field"
	InvalidParams Code = "invalid_params"

	// Hardware-side failures surfaced to the host.
	BusError Code = "bus_error"

	Error Code = "error" // generic fallback
)

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
