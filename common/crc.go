// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common holds the pieces shared by the drivers in this module: the
// bus and delay capabilities they are written against, the error types they
// return, and the Sensirion CRC-8.
package common

import "fmt"

const (
	crcPolynomial byte = 0x31
	crcInit       byte = 0xff
)

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. Polynomial 0x31, initial value 0xff, as used by Sensirion
// humidity sensors.
func CRC8(bytes []byte) byte {
	crc := crcInit
	for _, val := range bytes {
		crc ^= val
		for range 8 {
			if crc&0x80 == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ crcPolynomial
			}
		}
	}
	return crc
}

// CheckCRC verifies a Sensirion read frame: a sequence of 16-bit big endian
// words, each followed by its CRC byte. It returns the words.
func CheckCRC(frame []byte) ([]uint16, error) {
	if len(frame)%3 != 0 {
		return nil, fmt.Errorf("crc frame length %d is not a multiple of 3", len(frame))
	}
	words := make([]uint16, 0, len(frame)/3)
	for i := 0; i < len(frame); i += 3 {
		if got := CRC8(frame[i : i+2]); got != frame[i+2] {
			return nil, fmt.Errorf("crc error on word %d: computed 0x%02x, received 0x%02x", i/3, got, frame[i+2])
		}
		words = append(words, uint16(frame[i])<<8|uint16(frame[i+1]))
	}
	return words, nil
}
