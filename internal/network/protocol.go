// Package network handles the line protocol shared by server and client
package network

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates the fields of one protocol line. Fields containing it
// are not escaped and will corrupt framing.
const Delimiter = "##"

// MessageType is the first field of every protocol line
type MessageType string

const (
	MsgUser       MessageType = "USER"
	MsgGuess      MessageType = "GUESS"
	MsgDisconnect MessageType = "DISCONNECT"
	MsgBroadcast  MessageType = "BROADCAST"
	MsgNewGame    MessageType = "NEWGAME"
	MsgEndGame    MessageType = "ENDGAME"
)

// Round outcomes carried in ENDGAME events
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
)

var knownTypes = map[MessageType]struct{}{
	MsgUser:       {},
	MsgGuess:      {},
	MsgDisconnect: {},
	MsgBroadcast:  {},
	MsgNewGame:    {},
	MsgEndGame:    {},
}

// ErrMalformedMessage reports a line whose type tag is not recognized
var ErrMalformedMessage = errors.New("malformed message")

func (t MessageType) String() string {
	return string(t)
}

// ParseMessageType maps a tag to a known MessageType, ignoring case
func ParseMessageType(tag string) (MessageType, error) {
	t := MessageType(strings.ToUpper(tag))
	if _, ok := knownTypes[t]; !ok {
		return "", fmt.Errorf("%w: unknown type tag %q", ErrMalformedMessage, tag)
	}
	return t, nil
}

// Message is one decoded protocol line. It is never modified after creation.
type Message struct {
	msgType MessageType
	body    []string
}

// NewMessage creates a message, copying body
func NewMessage(msgType MessageType, body ...string) Message {
	var b []string
	if len(body) > 0 {
		b = make([]string, len(body))
		copy(b, body)
	}
	return Message{msgType: msgType, body: b}
}

// Type returns the message type tag
func (m Message) Type() MessageType {
	return m.msgType
}

// Body returns a copy of the body fields
func (m Message) Body() []string {
	if m.body == nil {
		return nil
	}
	b := make([]string, len(m.body))
	copy(b, m.body)
	return b
}

// Field returns body field i, or "" and false when absent
func (m Message) Field(i int) (string, bool) {
	if i < 0 || i >= len(m.body) {
		return "", false
	}
	return m.body[i], true
}

// Len returns the number of body fields
func (m Message) Len() int {
	return len(m.body)
}

// Encode renders the message as one line without the trailing newline
func (m Message) Encode() string {
	parts := make([]string, 0, len(m.body)+1)
	parts = append(parts, m.msgType.String())
	parts = append(parts, m.body...)
	return strings.Join(parts, Delimiter)
}

// Decode parses one line. Only an unknown type tag is an error; any number of
// body fields is accepted.
func Decode(line string) (Message, error) {
	tokens := strings.Split(line, Delimiter)
	msgType, err := ParseMessageType(tokens[0])
	if err != nil {
		return Message{}, err
	}
	return NewMessage(msgType, tokens[1:]...), nil
}

// Wrap frames a broadcast event for delivery to clients:
// BROADCAST##<type>##<body...>
func Wrap(event Message) Message {
	body := make([]string, 0, len(event.body)+1)
	body = append(body, event.msgType.String())
	body = append(body, event.body...)
	return Message{msgType: MsgBroadcast, body: body}
}

// Unwrap reverses Wrap. ok is false when m is not a BROADCAST frame or the
// inner tag is unknown.
func Unwrap(m Message) (Message, bool) {
	if m.msgType != MsgBroadcast || len(m.body) == 0 {
		return Message{}, false
	}
	inner, err := ParseMessageType(m.body[0])
	if err != nil {
		return Message{}, false
	}
	return NewMessage(inner, m.body[1:]...), true
}
