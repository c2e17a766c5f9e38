// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"errors"
	"strings"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params"
)

const AmountLen = 32

var errAmountFormat = errors.New("invalid amount format")

// AmountBytes returns the fixed width big-endian encoding of a. A nil
// amount encodes as zero.
func AmountBytes(a *uint256.Int) [AmountLen]byte {
	if a == nil {
		return [AmountLen]byte{}
	}
	return a.Bytes32()
}

// AmountFromBytes is the inverse of AmountBytes.
func AmountFromBytes(b []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(b)
}

// ParseNight parses a decimal NIGHT amount such as "150" or "0.25"
// into base units.
func ParseNight(s string) (*uint256.Int, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if whole == "" && frac == "" {
		return nil, errAmountFormat
	}
	if len(frac) > params.NightDecimals {
		return nil, errors.New("too many decimal places")
	}
	frac += strings.Repeat("0", params.NightDecimals-len(frac))
	if whole == "" {
		whole = "0"
	}
	v, err := uint256.FromDecimal(whole + frac)
	if err != nil {
		return nil, errAmountFormat
	}
	return v, nil
}

// FormatNight formats base units as a decimal NIGHT string.
func FormatNight(a *uint256.Int) string {
	if a == nil {
		return "0"
	}
	unit := uint256.NewInt(params.NanosPerNight)
	whole, frac := new(uint256.Int), new(uint256.Int)
	whole.DivMod(a, unit, frac)
	if frac.IsZero() {
		return whole.Dec()
	}
	f := frac.Dec()
	f = strings.Repeat("0", params.NightDecimals-len(f)) + f
	return whole.Dec() + "." + strings.TrimRight(f, "0")
}
