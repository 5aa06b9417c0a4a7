package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Combine(tt.high, tt.low), "Combine(%X, %X)", tt.high, tt.low)
	}
}

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		a, b             uint8
		expectedResult   uint8
		expectedOverflow bool
	}{
		{0xFF, 0x01, 0, true},
		{0xFF, 0xFF, 254, true},
		{0x01, 0x01, 2, false},
		{0x80, 0x00, 128, false},
		{0x00, 0x00, 0, false},
		{0x80, 0x7F, 255, false},
	}

	for _, tt := range tests {
		result, overflow := CheckedAdd(tt.a, tt.b)
		assert.Equal(t, tt.expectedResult, result, "CheckedAdd(%d, %d)", tt.a, tt.b)
		assert.Equal(t, tt.expectedOverflow, overflow, "CheckedAdd(%d, %d)", tt.a, tt.b)
	}
}

func TestCheckedSub(t *testing.T) {
	tests := []struct {
		a, b           uint8
		expectedResult uint8
		expectedBorrow bool
	}{
		{0x00, 0x01, 255, true},
		{0x01, 0x01, 0, false},
		{0x80, 0x00, 128, false},
		{0xFF, 0xFF, 0, false},
		{0x00, 0xFF, 1, true},
	}

	for _, tt := range tests {
		result, borrow := CheckedSub(tt.a, tt.b)
		assert.Equal(t, tt.expectedResult, result, "CheckedSub(%d, %d)", tt.a, tt.b)
		assert.Equal(t, tt.expectedBorrow, borrow, "CheckedSub(%d, %d)", tt.a, tt.b)
	}
}

func TestIsSet(t *testing.T) {
	tests := []struct {
		byte     uint8
		index    uint8
		expected bool
	}{
		{0b10101010, 0, false},
		{0b10101010, 1, true},
		{0b10101010, 2, false},
		{0b10101010, 7, true},
		{0b10101010, 8, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsSet(tt.index, tt.byte), "IsSet(%d, %08b)", tt.index, tt.byte)
	}
}

func TestSetAndClear(t *testing.T) {
	assert.Equal(t, uint8(0b00000001), Set(0, 0))
	assert.Equal(t, uint8(0b10000000), Set(7, 0))
	assert.Equal(t, uint8(0b11111110), Clear(0, 0xFF))
	assert.Equal(t, uint8(0b01111111), Clear(7, 0xFF))
	assert.Equal(t, uint8(1), GetBitValue(7, 0x80))
	assert.Equal(t, uint8(0), GetBitValue(6, 0x80))
}

func TestHighLow(t *testing.T) {
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
}

func TestNibble(t *testing.T) {
	tests := []struct {
		value    uint16
		index    uint8
		expected uint8
	}{
		{0xD12F, 0, 0xF},
		{0xD12F, 1, 0x2},
		{0xD12F, 2, 0x1},
		{0xD12F, 3, 0xD},
		{0x0000, 3, 0x0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Nibble(tt.value, tt.index), "Nibble(%04X, %d)", tt.value, tt.index)
	}
}
