// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

import (
	"fmt"
	"strings"
)

// FormatFrame formats a frame's fields in layout order, e.g.
//
//	single_output T=0 0 C=0 a=0 1 M=0 O=0 D=5 L=0xE payload=0x045E
func FormatFrame(f Frame) string {
	var s strings.Builder
	s.WriteString(f.Protocol)
	for _, field := range f.Layout {
		if field.Literal {
			fmt.Fprintf(&s, " %d", field.Value)
			continue
		}
		fmt.Fprintf(&s, " %s=%d", field.Name, f.Values[field.Name])
	}
	fmt.Fprintf(&s, " L=0x%X payload=0x%0*X", f.LRC, (f.Bits+3)/4, f.Payload)
	return s.String()
}

// FormatBits renders the payload as a binary string grouped in nibbles
func FormatBits(f Frame) string {
	var s strings.Builder
	for i := 0; i < f.Bits; i++ {
		if i > 0 && i%4 == 0 {
			s.WriteByte(' ')
		}
		s.WriteByte('0' + f.Bit(i))
	}
	return s.String()
}

// FormatPulses formats a pulse sequence as comma separated microseconds,
// eight mark/space pairs per line
func FormatPulses(pulses []uint32) string {
	var s strings.Builder
	for i, p := range pulses {
		if i > 0 {
			if i%16 == 0 {
				s.WriteString(",\n")
			} else {
				s.WriteString(", ")
			}
		}
		fmt.Fprintf(&s, "%d", p)
	}
	return s.String()
}
