// Package command implements the line-oriented control protocol for the
// clock generator.
//
// A request is one line of whitespace-separated tokens:
//
//	<seq> [freq=<hz>] [enable=on|off]
//
// where <seq> is the caller's command number, echoed back in the response.
// Responses are single-line JSON objects:
//
//	{"command_number":1,"frequency":25000000,"enable_out":true}
//	{"command_number":1,"error":"invalid_params"}
//
// Framing (line delimiting) is the transport's concern; this package only
// sees whole lines. A decode error means the chip must not be touched for
// that request.
package command

import (
	"strings"

	"github.com/google/shlex"

	"github.com/joesugar/raspberrypi-pico-cy22150/errcode"
	"github.com/joesugar/raspberrypi-pico-cy22150/x/strconvx"
)

// Request is one decoded command. Optional fields carry presence flags
// rather than pointers (no per-request heap traffic on the MCU).
type Request struct {
	Seq       int
	FreqHz    uint32
	HasFreq   bool
	Enable    bool
	HasEnable bool
}

// Response reports the chip state realized after a request was applied.
// FreqHz is the realized frequency, not the requested one.
type Response struct {
	Seq     int
	FreqHz  uint32
	Enabled bool
}

// Decode parses one request line. On error the returned Request still
// carries the sequence number when one was readable, so the error response
// can reference it.
func Decode(line string) (Request, error) {
	var req Request

	toks, err := shlex.Split(line)
	if err != nil {
		return req, errcode.BadSyntax
	}
	if len(toks) == 0 {
		return req, errcode.EmptyCommand
	}

	seq, err := strconvx.Atoi(toks[0])
	if err != nil {
		return req, errcode.BadSequence
	}
	req.Seq = seq

	for _, tok := range toks[1:] {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			return req, errcode.BadSyntax
		}
		switch key {
		case "freq":
			hz, err := strconvx.ParseUint(val, 10, 32)
			if err != nil {
				return req, errcode.InvalidParams
			}
			req.FreqHz = uint32(hz)
			req.HasFreq = true
		case "enable":
			on, ok := parseBool(val)
			if !ok {
				return req, errcode.InvalidParams
			}
			req.Enable = on
			req.HasEnable = true
		default:
			return req, errcode.UnknownField
		}
	}
	return req, nil
}

func parseBool(s string) (val, ok bool) {
	switch s {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	}
	return false, false
}

// EncodeRequest renders the request line for r. Both sides of the transport
// share this so the wire format lives in one place.
func EncodeRequest(r Request) string {
	s := strconvx.Itoa(r.Seq)
	if r.HasFreq {
		s += " freq=" + strconvx.FormatUint(uint64(r.FreqHz), 10)
	}
	if r.HasEnable {
		if r.Enable {
			s += " enable=on"
		} else {
			s += " enable=off"
		}
	}
	return s
}

// EncodeAck renders the acknowledgement line for a committed request.
func EncodeAck(r Response) string {
	b := "false"
	if r.Enabled {
		b = "true"
	}
	return `{"command_number":` + strconvx.Itoa(r.Seq) +
		`,"frequency":` + strconvx.FormatUint(uint64(r.FreqHz), 10) +
		`,"enable_out":` + b + `}`
}

// EncodeError renders the error line for a request that was not applied.
func EncodeError(seq int, err error) string {
	return `{"command_number":` + strconvx.Itoa(seq) +
		`,"error":"` + string(errcode.Of(err)) + `"}`
}
