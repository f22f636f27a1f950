// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc implements the 16 bit CRC-CCITT used to fingerprint map
// files, as a hash.Hash.
package crc

import (
	"hash"
)

const (
	ccittFalse = 0x1021
	cRCInitial = 0xffff

	Size = 2
)

type table [256]uint16

// 16bit CRC used by XMODEM
var ccittFalseTable = makeTable(ccittFalse)

func makeTable(poly uint16) *table {
	t := &table{}
	width := uint16(16)
	for i := range uint16(256) {
		crc := i << (width - 8)
		for range 8 {
			if crc&(1<<(width-1)) != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

func update(crc uint16, p []byte) uint16 {
	for _, v := range p {
		crc = ccittFalseTable[byte(crc>>8)^v] ^ (crc << 8)
	}
	return crc
}

// Checksum returns the crc of data.
func Checksum(data []byte) uint16 {
	return update(cRCInitial, data)
}

type digest struct {
	crc uint16
}

// New returns a hash.Hash computing the checksum.
func New() hash.Hash {
	return &digest{crc: cRCInitial}
}

func (d *digest) Write(p []byte) (int, error) {
	d.crc = update(d.crc, p)
	return len(p), nil
}

func (d *digest) Sum16() uint16 {
	return d.crc
}

func (d *digest) Sum(b []byte) []byte {
	return append(b, byte(d.crc>>8), byte(d.crc))
}

func (d *digest) Reset() {
	d.crc = cRCInitial
}

func (d *digest) Size() int {
	return Size
}

func (d *digest) BlockSize() int {
	return 1
}
