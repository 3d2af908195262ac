package mailer

import (
	"errors"
	"net"
	"net/textproto"
	"strings"
)

// ErrorCode classifies a send failure for API callers.
type ErrorCode string

const (
	CodeAuthFailure       ErrorCode = "auth-failure"
	CodeConnectionFailure ErrorCode = "connection-failure"
	CodeGeneric           ErrorCode = "generic"
)

// Classify maps a transport error onto the public failure taxonomy.
func Classify(err error) ErrorCode {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535, 538:
			return CodeAuthFailure
		case 421:
			return CodeConnectionFailure
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeConnectionFailure
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "auth"), strings.Contains(msg, "credentials"):
		return CodeAuthFailure
	case strings.Contains(msg, "dial"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection reset"):
		return CodeConnectionFailure
	}

	return CodeGeneric
}
