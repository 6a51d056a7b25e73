package resp

import (
	"bufio"
	"strconv"

	"github.com/yndnr/memkv-go/internal/core/domain"
)

func WriteSimpleString(w *bufio.Writer, s string) error {
	_, err := w.WriteString("+" + s + "\r\n")
	return err
}

func WriteError(w *bufio.Writer, s string) error {
	_, err := w.WriteString("-" + s + "\r\n")
	return err
}

func WriteInteger(w *bufio.Writer, n int64) error {
	_, err := w.WriteString(":" + strconv.FormatInt(n, 10) + "\r\n")
	return err
}

func WriteNullBulk(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}

func WriteBulkString(w *bufio.Writer, s string) error {
	if _, err := w.WriteString("$" + strconv.Itoa(len(s)) + "\r\n"); err != nil {
		return err
	}
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

func WriteArrayHeader(w *bufio.Writer, n int) error {
	_, err := w.WriteString("*" + strconv.Itoa(n) + "\r\n")
	return err
}

// WriteReply encodes a domain reply.
//
// A reply of unknown kind is written as an internal error so the client
// still gets one reply per command. The returned error wraps
// domain.ErrInternal and the caller should close the connection.
func WriteReply(w *bufio.Writer, r domain.Reply) error {
	switch r.Kind {
	case domain.ReplySimpleString:
		return WriteSimpleString(w, r.Text)
	case domain.ReplyError:
		return WriteError(w, r.Text)
	case domain.ReplyInteger:
		return WriteInteger(w, r.Int)
	case domain.ReplyBulkString:
		return WriteBulkString(w, r.Text)
	case domain.ReplyNullBulk:
		return WriteNullBulk(w)
	default:
		if err := WriteError(w, domain.ErrInternal.ReplyText()); err != nil {
			return err
		}
		return domain.ErrInternal.WithDetailsf("unknown reply kind %d", r.Kind)
	}
}

// WriteCommand encodes a request as an array of bulk strings, the form
// a client sends to the server.
func WriteCommand(w *bufio.Writer, args ...string) error {
	if err := WriteArrayHeader(w, len(args)); err != nil {
		return err
	}
	for _, a := range args {
		if err := WriteBulkString(w, a); err != nil {
			return err
		}
	}
	return nil
}
