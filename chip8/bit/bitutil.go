package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// CheckedAdd adds two 8 bit unsigned values and detects if an overflow happened.
// The sum is computed on 16 bits and masked back, so the result is always mod 256.
func CheckedAdd(a, b uint8) (result uint8, overflow bool) {
	sum := uint16(a) + uint16(b)
	return uint8(sum & 0xFF), sum > 0xFF
}

// CheckedSub subtracts two 8 bit unsigned values and detects if a borrow happened.
func CheckedSub(a, b uint8) (result uint8, borrow bool) {
	diff := (uint16(a) - uint16(b)) & 0xFF
	return uint8(diff), b > a
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// Clear will return the passed byte with the bit at the specified index set to 0.
func Clear(index, byte uint8) uint8 {
	return byte & ^(1 << index)
}

// Set will return the passed byte with the bit at the specified index set to 1.
func Set(index, byte uint8) uint8 {
	return byte | (1 << index)
}

// GetBitValue returns a byte set to the value of the bit at the specified index.
func GetBitValue(index, byte uint8) uint8 {
	if IsSet(index, byte) {
		return 1
	}

	return 0
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value & 0xFF)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// Nibble returns the 4 bit group at the given index, 0 being the least significant.
// Example: Nibble(0xD12F, 3) -> 0xD
func Nibble(value uint16, index uint8) uint8 {
	return uint8((value >> (index * 4)) & 0x0F)
}
