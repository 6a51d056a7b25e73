package domain

import "errors"

// ReplyKind identifies how a Reply is framed on the wire.
type ReplyKind uint8

// Reply kinds.
const (
	ReplySimpleString ReplyKind = iota + 1
	ReplyError
	ReplyInteger
	ReplyBulkString
	ReplyNullBulk
)

// Reply is the result of executing a Command.
type Reply struct {
	Kind ReplyKind
	Text string
	Int  int64
}

// SimpleString returns a simple string reply ("+OK").
func SimpleString(s string) Reply {
	return Reply{Kind: ReplySimpleString, Text: s}
}

// BulkString returns a bulk string reply.
func BulkString(s string) Reply {
	return Reply{Kind: ReplyBulkString, Text: s}
}

// NullBulk returns the null bulk string reply ("$-1").
func NullBulk() Reply {
	return Reply{Kind: ReplyNullBulk}
}

// Integer returns an integer reply.
func Integer(n int64) Reply {
	return Reply{Kind: ReplyInteger, Int: n}
}

// ErrorReply converts an error into an error reply.
// DomainErrors keep their reply text; other errors are reported as
// "ERR <message>".
func ErrorReply(err error) Reply {
	var de *DomainError
	if errors.As(err, &de) {
		return Reply{Kind: ReplyError, Text: de.ReplyText()}
	}
	return Reply{Kind: ReplyError, Text: "ERR " + err.Error()}
}

// IsError reports whether the reply is an error reply.
func (r Reply) IsError() bool {
	return r.Kind == ReplyError
}
