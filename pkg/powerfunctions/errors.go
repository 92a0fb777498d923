// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

import (
	"errors"
	"fmt"
)

// ErrProtocol matches every *ProtocolError via errors.Is
var ErrProtocol = errors.New("protocol error")

// ProtocolError reports a malformed waveform definition or a message that
// cannot be packed into its declared fields
type ProtocolError struct {
	Op  string // "define", "pack" or "encode"
	Msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s: %s", e.Op, e.Msg)
}

// Is makes errors.Is(err, ErrProtocol) true for any ProtocolError
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

func protocolErrorf(op, format string, args ...interface{}) error {
	return &ProtocolError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
