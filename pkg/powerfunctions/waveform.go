// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

// Values holds the variable field values of one message, keyed by field name
type Values map[string]uint8

// ChecksumFunc computes the 4-bit LRC from the variable fields of a message
type ChecksumFunc func(v Values) uint8

// Timing is a mark/space pair expressed in carrier periods
type Timing struct {
	Mark  uint32
	Space uint32
}

// FieldSpec is one entry of a frame layout, most significant field first.
// Literal fields always carry Value and have no name.
type FieldSpec struct {
	Name    string
	Width   uint8
	Literal bool
	Value   uint8
}

// Field declares a named variable field
func Field(name string, width uint8) FieldSpec {
	return FieldSpec{Name: name, Width: width}
}

// Literal declares a fixed-value field
func Literal(value, width uint8) FieldSpec {
	return FieldSpec{Width: width, Literal: true, Value: value}
}

// WaveformDef is the declarative description of a protocol's physical encoding
type WaveformDef struct {
	Name      string
	Carrier   uint32 // Hz
	DutyCycle uint8  // percent
	Zero      Timing
	One       Timing
	Lead      Timing
	Trail     Timing
	Fields    []FieldSpec // without the LRC, which is appended
	Checksum  ChecksumFunc
}

// Waveform is a validated WaveformDef with its durations resolved to microseconds
type Waveform struct {
	def   WaveformDef
	bits  int
	zero  [2]uint32
	one   [2]uint32
	lead  [2]uint32
	trail [2]uint32
}

// NewWaveform validates a definition and precomputes its pulse durations
func NewWaveform(def WaveformDef) (*Waveform, error) {
	if def.Carrier == 0 {
		return nil, protocolErrorf("define", "%s: carrier frequency must be positive", def.Name)
	}
	if def.DutyCycle == 0 || def.DutyCycle > 100 {
		return nil, protocolErrorf("define", "%s: duty cycle %d%% out of range", def.Name, def.DutyCycle)
	}
	if def.Checksum == nil {
		return nil, protocolErrorf("define", "%s: missing checksum", def.Name)
	}
	if len(def.Fields) == 0 {
		return nil, protocolErrorf("define", "%s: no fields", def.Name)
	}

	seen := make(map[string]bool, len(def.Fields))
	bits := LRCBits
	for i, f := range def.Fields {
		if f.Width == 0 || f.Width > 8 {
			return nil, protocolErrorf("define", "%s: field %d has invalid width %d", def.Name, i, f.Width)
		}
		if f.Literal {
			if f.Value>>f.Width != 0 {
				return nil, protocolErrorf("define", "%s: literal %d does not fit in %d bits", def.Name, f.Value, f.Width)
			}
		} else {
			if f.Name == "" || f.Name == FieldLRC {
				return nil, protocolErrorf("define", "%s: field %d has invalid name %q", def.Name, i, f.Name)
			}
			if seen[f.Name] {
				return nil, protocolErrorf("define", "%s: duplicate field %q", def.Name, f.Name)
			}
			seen[f.Name] = true
		}
		bits += int(f.Width)
	}
	if bits > 32 {
		return nil, protocolErrorf("define", "%s: payload of %d bits exceeds 32", def.Name, bits)
	}

	w := &Waveform{def: def, bits: bits}
	w.zero = w.timing(def.Zero)
	w.one = w.timing(def.One)
	w.lead = w.timing(def.Lead)
	w.trail = w.timing(def.Trail)
	return w, nil
}

// Name returns the protocol name of the waveform
func (w *Waveform) Name() string {
	return w.def.Name
}

// Bits returns the payload width including the LRC
func (w *Waveform) Bits() int {
	return w.bits
}

// FrameLength returns the number of durations a rendered frame holds
func (w *Waveform) FrameLength() int {
	return 2 + 2*w.bits + 2
}

// Fields returns the field layout without the LRC
func (w *Waveform) Fields() []FieldSpec {
	out := make([]FieldSpec, len(w.def.Fields))
	copy(out, w.def.Fields)
	return out
}

// Carrier returns the carrier frequency in Hz and the duty cycle in percent
func (w *Waveform) Carrier() (uint32, uint8) {
	return w.def.Carrier, w.def.DutyCycle
}

// timing converts carrier periods to whole microseconds (truncating)
func (w *Waveform) timing(t Timing) [2]uint32 {
	return [2]uint32{w.micros(t.Mark), w.micros(t.Space)}
}

func (w *Waveform) micros(units uint32) uint32 {
	return uint32(uint64(units) * 1_000_000 / uint64(w.def.Carrier))
}

// Pack concatenates the fields and the computed LRC into a payload integer
func (w *Waveform) Pack(v Values) (payload uint32, lrc uint8, err error) {
	for _, f := range w.def.Fields {
		value := f.Value
		if !f.Literal {
			var ok bool
			value, ok = v[f.Name]
			if !ok {
				return 0, 0, protocolErrorf("pack", "%s: missing field %q", w.def.Name, f.Name)
			}
			if value>>f.Width != 0 {
				return 0, 0, protocolErrorf("pack", "%s: field %s=%d exceeds %d bits", w.def.Name, f.Name, value, f.Width)
			}
		}
		payload = payload<<f.Width | uint32(value)
	}

	lrc = w.def.Checksum(v)
	if lrc>>LRCBits != 0 {
		return 0, 0, protocolErrorf("pack", "%s: checksum 0x%X exceeds %d bits", w.def.Name, lrc, LRCBits)
	}
	payload = payload<<LRCBits | uint32(lrc)
	return payload, lrc, nil
}

// Render turns a packed payload into lead burst, one mark/space pair per bit
// (MSB first) and trail burst
func (w *Waveform) Render(payload uint32) []uint32 {
	pulses := make([]uint32, 0, w.FrameLength())
	pulses = append(pulses, w.lead[0], w.lead[1])
	for i := w.bits - 1; i >= 0; i-- {
		if payload>>uint(i)&1 == 1 {
			pulses = append(pulses, w.one[0], w.one[1])
		} else {
			pulses = append(pulses, w.zero[0], w.zero[1])
		}
	}
	return append(pulses, w.trail[0], w.trail[1])
}

// Build packs v and renders the resulting frame
func (w *Waveform) Build(v Values) (Frame, error) {
	payload, lrc, err := w.Pack(v)
	if err != nil {
		return Frame{}, err
	}

	values := make(Values, len(v))
	for k, val := range v {
		values[k] = val
	}

	return Frame{
		Protocol: w.def.Name,
		Layout:   w.Fields(),
		Values:   values,
		LRC:      lrc,
		Payload:  payload,
		Bits:     w.bits,
		Pulses:   w.Render(payload),
	}, nil
}

// powerFunctionsDef returns the timing shared by all four protocols
func powerFunctionsDef(name string, fields []FieldSpec, checksum ChecksumFunc) WaveformDef {
	return WaveformDef{
		Name:      name,
		Carrier:   CarrierFrequency,
		DutyCycle: DutyCycle,
		Zero:      Timing{Mark: bitMarkUnits, Space: zeroSpaceUnits},
		One:       Timing{Mark: bitMarkUnits, Space: oneSpaceUnits},
		Lead:      Timing{Mark: burstMarkUnits, Space: burstGapUnits},
		Trail:     Timing{Mark: burstMarkUnits, Space: burstGapUnits},
		Fields:    fields,
		Checksum:  checksum,
	}
}
