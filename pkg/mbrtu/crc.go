// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mbrtu

// CalculateCRC computes the CRC-16/Modbus checksum for the given data
func CalculateCRC(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// AppendCRC appends the checksum of frame to it, low byte first, as the
// chamber expects on the wire.
func AppendCRC(frame []byte) []byte {
	crc := CalculateCRC(frame)
	return append(frame, byte(crc&0xFF), byte(crc>>8))
}

// VerifyCRC reports whether the trailing two bytes of frame are the valid
// checksum of the preceding bytes. Frames shorter than the checksum itself
// never verify.
func VerifyCRC(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	body := frame[:len(frame)-2]
	crc := CalculateCRC(body)
	return frame[len(frame)-2] == byte(crc&0xFF) && frame[len(frame)-1] == byte(crc>>8)
}
