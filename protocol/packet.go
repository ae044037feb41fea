/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import "encoding/binary"

// RdmData is the tagged union every packet on the wire decodes to: either a
// Request (carries PortID) or a Response (carries ResponseType). Both share
// the rest of the common header fields, so they're modeled as one struct
// with an IsResponse tag rather than as two unrelated types behind an
// interface -- callers that need to branch do so on IsResponse, the same
// way the rest of this package keeps its sum types flat.
type RdmData struct {
	Destination      PackageAddress
	Source           PackageAddress // invariant: never IsBroadcast()
	TransactionNumber uint8
	MessageCount     uint8
	SubDevice        uint16
	CommandClass     CommandClass
	ParameterID      ParameterID
	ParameterData    []byte // len <= MaxParamData

	IsResponse bool

	PortID       uint8        // valid when !IsResponse
	ResponseType ResponseType // valid when IsResponse
}

// Checksum is the 16-bit sum of all bytes, mod 2^16.
func Checksum(b []byte) uint16 {
	var sum uint16
	for _, c := range b {
		sum += uint16(c)
	}
	return sum
}

// Serialize encodes an RdmData into the structured RDM packet layout
// described in ANSI E1.20 Table 15. The returned slice is
// 26 + len(ParameterData) bytes.
func Serialize(p RdmData) ([]byte, error) {
	if len(p.ParameterData) > MaxParamData {
		return nil, newCodecError(ReasonBufferTooBig, "parameter data")
	}
	n := 26 + len(p.ParameterData)
	b := make([]byte, n)

	b[0] = RDMStartCode
	b[1] = RDMSubStartCode
	b[2] = uint8(24 + len(p.ParameterData))

	dst := p.Destination.Bytes()
	copy(b[3:9], dst[:])
	src := p.Source.Bytes()
	copy(b[9:15], src[:])

	b[15] = p.TransactionNumber
	if p.IsResponse {
		b[16] = uint8(p.ResponseType)
	} else {
		b[16] = p.PortID
	}
	b[17] = p.MessageCount
	binary.BigEndian.PutUint16(b[18:20], p.SubDevice)
	b[20] = uint8(p.CommandClass)
	binary.BigEndian.PutUint16(b[21:23], uint16(p.ParameterID))
	b[23] = uint8(len(p.ParameterData))
	copy(b[24:24+len(p.ParameterData)], p.ParameterData)

	checksum := Checksum(b[:n-2])
	binary.BigEndian.PutUint16(b[n-2:n], checksum)

	return b, nil
}

// Deserialize parses a structured RDM packet, validating length, start
// codes, checksum, and the request/response command class split.
func Deserialize(b []byte) (RdmData, error) {
	var p RdmData

	if len(b) < MinPacketSize {
		return p, newCodecError(ReasonBufferTooSmall, "")
	}
	if len(b) > MaxPacketSize {
		return p, newCodecError(ReasonBufferTooBig, "")
	}
	if b[0] != RDMStartCode || b[1] != RDMSubStartCode {
		return p, newCodecError(ReasonWrongStartCode, "")
	}

	messageLength := int(b[2])
	if messageLength+2 != len(b) {
		return p, newCodecError(ReasonWrongMessageLength, "")
	}

	n := len(b)
	wantChecksum := Checksum(b[:n-2])
	gotChecksum := binary.BigEndian.Uint16(b[n-2 : n])
	if wantChecksum != gotChecksum {
		return p, newCodecError(ReasonWrongChecksum, "")
	}

	p.Destination = PackageAddressFromBytes(b[3:9])
	p.Source = PackageAddressFromBytes(b[9:15])
	if p.Source.IsBroadcast() {
		return RdmData{}, newCodecError(ReasonSourceUidIsBroadcast, "")
	}

	p.TransactionNumber = b[15]
	p.MessageCount = b[17]
	p.SubDevice = binary.BigEndian.Uint16(b[18:20])

	cc := CommandClass(b[20])
	switch {
	case cc.IsRequest():
		p.IsResponse = false
		p.PortID = b[16]
	case cc.IsResponse():
		if !isKnownResponseType(b[16]) {
			return RdmData{}, newCodecError(ReasonResponseTypeNotFound, "")
		}
		p.IsResponse = true
		p.ResponseType = ResponseType(b[16])
	default:
		return RdmData{}, newCodecError(ReasonCommandClassNotFound, "")
	}
	p.CommandClass = cc

	p.ParameterID = ParameterID(binary.BigEndian.Uint16(b[21:23]))
	pdl := int(b[23])
	if 24+pdl+2 != n {
		return RdmData{}, newCodecError(ReasonWrongMessageLength, "parameter data length")
	}
	if pdl > 0 {
		p.ParameterData = append([]byte(nil), b[24:24+pdl]...)
	}

	return p, nil
}
