// Package resp implements the RESP2 request framing used by memkv.
//
// Requests arrive as arrays of bulk strings:
//
//	*<N>\r\n $<len>\r\n <bytes>\r\n ... (N times)
//
// Decoding happens in two layers. Decoder splits a growing byte buffer
// into line tokens and never assumes that a socket read ends on a token
// boundary. Parser runs the array/bulk-string state machine over those
// tokens and emits domain.Command values once a frame is complete.
//
// The Write* helpers encode replies (simple strings, errors, integers,
// bulk strings, null bulk strings) and client requests.
package resp
