// Package conv formats identifiers without fmt.
package conv

const hexDigits = "0123456789ABCDEF"

// Hex32 renders n as "0x" followed by the minimum number of uppercase hex
// digits, at least three (CAN standard identifiers are 11 bits).
func Hex32(n uint32) string {
	var buf [10]byte
	i := len(buf)
	for j := 0; j < 3 || n != 0; j++ {
		i--
		buf[i] = hexDigits[n&0xF]
		n >>= 4
	}
	i -= 2
	buf[i], buf[i+1] = '0', 'x'
	return string(buf[i:])
}
