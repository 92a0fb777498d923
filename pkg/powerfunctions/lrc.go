// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

// Each LRC is a 4-bit XOR fold of nibbles built from the fields, finished by
// XOR with 0xF. Missing fields read as zero.

// SingleOutputLRC: L = 0xF ^ ((T*8 + C) ^ ((a<<3)|(1<<2)|(M<<1)|O) ^ D)
func SingleOutputLRC(v Values) uint8 {
	n1 := v[FieldToggle]<<3 + v[FieldChannel]
	n2 := v[FieldAddress]<<3 | 1<<2 | v[FieldMode]<<1 | v[FieldOutput]
	return 0xF ^ (n1^n2^v[FieldData])&0xF
}

// ComboPWMLRC: L = 0xF ^ (((a<<3)|(1<<2)|C) ^ B ^ A)
func ComboPWMLRC(v Values) uint8 {
	n1 := v[FieldAddress]<<3 | 1<<2 | v[FieldChannel]
	return 0xF ^ (n1^v[FieldOutputB]^v[FieldOutputA])&0xF
}

// ExtendedLRC: L = 0xF ^ ((T*8 + E*4 + C) ^ (a*8 + M) ^ F). Combo Direct uses it too.
func ExtendedLRC(v Values) uint8 {
	n1 := v[FieldToggle]<<3 + v[FieldEscape]<<2 + v[FieldChannel]
	n2 := v[FieldAddress]<<3 + v[FieldMode]
	return 0xF ^ (n1^n2^v[FieldFunction])&0xF
}
