// Package hashing implements the cyrb53 string hash used for device identifiers.
package hashing

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// MaxHash is the largest value Hash can return (2^53 - 1).
const MaxHash = 1<<53 - 1

// Hash returns the 53-bit cyrb53 hash of input.
//
// Characters are consumed as UTF-16 code units so the result matches
// implementations that iterate over charCodeAt. Multiplications wrap at
// 32 bits. The second lane's final mix reads the already mixed first lane.
func Hash(input string, seed uint32) uint64 {
	h1 := uint32(0xdeadbeef) ^ seed
	h2 := uint32(0x41c6ce57) ^ seed

	for _, ch := range utf16.Encode([]rune(input)) {
		h1 = (h1 ^ uint32(ch)) * 2654435761
		h2 = (h2 ^ uint32(ch)) * 1597334677
	}

	h1 = (h1^(h1>>16))*2246822507 ^ (h2^(h2>>13))*3266489909
	h2 = (h2^(h2>>16))*2246822507 ^ (h1^(h1>>13))*3266489909

	return 4294967296*uint64(h2&2097151) + uint64(h1)
}

// Hex renders a hash as uppercase hexadecimal without zero padding.
func Hex(h uint64) string {
	return strings.ToUpper(strconv.FormatUint(h, 16))
}
