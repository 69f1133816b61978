package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
)

// Address is a 7-bit I2C slave address.
type Address uint8

// AddressCount is the size of the 7-bit address space.
const AddressCount = 1 << 7

// MaxAddress is the highest valid 7-bit address.
const MaxAddress Address = AddressCount - 1

const reservedMask = 0x78

func (a Address) String() string {
	return fmt.Sprintf("0x%02X", uint8(a))
}

// IsReserved reports whether a falls into one of the blocks the I2C bus
// sets aside for bus management: 000 0xxx and 111 1xxx.
func IsReserved(a Address) bool {
	return a&reservedMask == 0 || a&reservedMask == reservedMask
}

// ParseAddress accepts a hexadecimal 7-bit address like "0x3C", "0X3c" or "3c".
func ParseAddress(s string) (Address, error) {
	const op = "parse address"

	h := strings.TrimSpace(s)
	if strings.HasPrefix(h, "0x") || strings.HasPrefix(h, "0X") {
		h = h[2:]
	}
	if h == "" {
		return 0, failure.New(failure.InvalidAddressFormat, op, "invalid hexadecimal 7-bit I2C address %q", s)
	}

	v, err := strconv.ParseUint(h, 16, 16)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, failure.New(failure.AddressOutOfRange, op, "address %q is outside 0x00 to 0x7F", s)
		}
		return 0, failure.New(failure.InvalidAddressFormat, op, "invalid hexadecimal 7-bit I2C address %q", s)
	}
	if v > uint64(MaxAddress) {
		return 0, failure.New(failure.AddressOutOfRange, op, "address %q is outside 0x00 to 0x7F", s)
	}

	return Address(v), nil
}

// ParseAddressList parses a comma or space separated list of addresses.
func ParseAddressList(s string) ([]Address, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	ret := make([]Address, 0, len(fields))
	for _, f := range fields {
		a, err := ParseAddress(f)
		if err != nil {
			return nil, err
		}
		ret = append(ret, a)
	}
	return ret, nil
}
