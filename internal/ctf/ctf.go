// Package ctf provides the swotrace side of the CTF (Common Trace
// Format) collaborator interface described in spec §4.6. The real CTF
// metadata parser and message decoder live outside this module; this
// package only provides a no-op implementation of the contract declared
// as interfaces.CTFDecoder, so the decoder builds and runs without it.
package ctf

import "github.com/blackmagic-traceview/swotrace/internal/interfaces"

// NoopDecoder implements interfaces.CTFDecoder by treating every
// channel as plain text: no channel is ever a CTF stream, and Decode is
// never expected to be called.
type NoopDecoder struct{}

func (NoopDecoder) StreamIsActive(int) bool { return false }

func (NoopDecoder) Decode([]byte, int) int { return 0 }

func (NoopDecoder) PeekMessage() (int, float64, string, bool) { return 0, 0, "", false }

func (NoopDecoder) PopMessage() {}

func (NoopDecoder) Reset() {}

var _ interfaces.CTFDecoder = NoopDecoder{}
