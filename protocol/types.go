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

// all references are given for ANSI E1.20-2010 (RDM) unless noted

import "encoding/binary"

// Wire constants, ANSI E1.11 / E1.20 §6.
const (
	DMXStartCode    uint8 = 0x00
	RDMStartCode    uint8 = 0xCC
	RDMSubStartCode uint8 = 0x01
	Preamble        uint8 = 0xFE
	Separator       uint8 = 0xAA

	PreambleCount = 7

	MinPacketSize = 22
	MaxPacketSize = 257
	MaxParamData  = 231

	// DiscoveryResponseSize is PreambleCount + 1 separator + 12 bytes of
	// bit-encoded UID + 4 bytes of bit-encoded checksum.
	DiscoveryResponseSize = PreambleCount + 1 + 12 + 4
)

// CommandClass identifies whether a packet is a request or response, and
// which of the three RDM command families it belongs to.
type CommandClass uint8

// CommandClass values, ANSI E1.20 Table A-2.
const (
	CommandClassDiscoveryRequest  CommandClass = 0x10
	CommandClassGetRequest        CommandClass = 0x20
	CommandClassSetRequest        CommandClass = 0x30
	CommandClassDiscoveryResponse CommandClass = 0x11
	CommandClassGetResponse       CommandClass = 0x21
	CommandClassSetResponse       CommandClass = 0x31
)

// IsRequest reports whether c is one of the three request classes.
func (c CommandClass) IsRequest() bool {
	switch c {
	case CommandClassDiscoveryRequest, CommandClassGetRequest, CommandClassSetRequest:
		return true
	default:
		return false
	}
}

// IsResponse reports whether c is one of the three response classes.
func (c CommandClass) IsResponse() bool {
	switch c {
	case CommandClassDiscoveryResponse, CommandClassGetResponse, CommandClassSetResponse:
		return true
	default:
		return false
	}
}

// ResponseType is the low-level disposition of a Response packet.
type ResponseType uint8

// ResponseType values, ANSI E1.20 Table A-5.
const (
	ResponseTypeAck         ResponseType = 0x00
	ResponseTypeAckTimer    ResponseType = 0x01
	ResponseTypeNackReason  ResponseType = 0x02
	ResponseTypeAckOverflow ResponseType = 0x03
)

func isKnownResponseType(b uint8) bool {
	switch ResponseType(b) {
	case ResponseTypeAck, ResponseTypeAckTimer, ResponseTypeNackReason, ResponseTypeAckOverflow:
		return true
	default:
		return false
	}
}

// NackReason is the 16-bit code carried by a NackReason response.
type NackReason uint16

// NackReason values, ANSI E1.20 Table A-17.
const (
	NackUnknownPid               NackReason = 0x0000
	NackFormatError              NackReason = 0x0001
	NackHardwareFault            NackReason = 0x0002
	NackProxyReject              NackReason = 0x0003
	NackWriteProtect             NackReason = 0x0004
	NackUnsupportedCommandClass  NackReason = 0x0005
	NackDataOutOfRange           NackReason = 0x0006
	NackBufferFull               NackReason = 0x0007
	NackPacketSizeUnsupported    NackReason = 0x0008
	NackSubDeviceOutOfRange      NackReason = 0x0009
	NackProxyBufferFull          NackReason = 0x000A
)

// ParameterID is the 16-bit identifier of an RDM parameter.
type ParameterID uint16

// ParameterID values handled internally by this package, ANSI E1.20 Table A-3.
const (
	PIDDiscUniqueBranch        ParameterID = 0x0001
	PIDDiscMute                ParameterID = 0x0002
	PIDDiscUnMute              ParameterID = 0x0003
	PIDQueuedMessage           ParameterID = 0x0020
	PIDStatusMessages          ParameterID = 0x0030
	PIDSupportedParameters     ParameterID = 0x0050
	PIDDeviceInfo              ParameterID = 0x0060
	PIDSoftwareVersionLabel    ParameterID = 0x00C0
	PIDDMXStartAddress         ParameterID = 0x00F0
	PIDIdentifyDevice          ParameterID = 0x1000
)

// DmxStartAddress is either NoAddress (wire value 0xFFFF) or a 1..512 slot.
type DmxStartAddress struct {
	// Valid is false for NoAddress.
	Valid   bool
	Address uint16
}

// NoDmxStartAddress is the "not set" sentinel value.
func NoDmxStartAddress() DmxStartAddress {
	return DmxStartAddress{}
}

// NewDmxStartAddress validates addr is in 1..=512 before wrapping it.
func NewDmxStartAddress(addr uint16) (DmxStartAddress, error) {
	if addr < 1 || addr > 512 {
		return DmxStartAddress{}, &CodecError{Reason: "dmx start address out of range"}
	}
	return DmxStartAddress{Valid: true, Address: addr}, nil
}

// ToWire returns the 2-byte big-endian wire encoding.
func (a DmxStartAddress) ToWire() uint16 {
	if !a.Valid {
		return 0xFFFF
	}
	return a.Address
}

// DmxStartAddressFromWire decodes the 2-byte wire value, failing for
// anything other than 0xFFFF or 1..=512.
func DmxStartAddressFromWire(v uint16) (DmxStartAddress, error) {
	if v == 0xFFFF {
		return NoDmxStartAddress(), nil
	}
	if v < 1 || v > 512 {
		return DmxStartAddress{}, &CodecError{Reason: "dmx start address out of range"}
	}
	return DmxStartAddress{Valid: true, Address: v}, nil
}

// StatusType is the severity/selector byte used by QUEUED_MESSAGE and
// STATUS_MESSAGES, ANSI E1.20 Table A-4.
type StatusType uint8

// StatusType values. 0x14 is ErrorCleared per the standard's table.
const (
	StatusNone            StatusType = 0x00
	StatusGetLastMessage  StatusType = 0x01
	StatusAdvisory        StatusType = 0x02
	StatusWarning         StatusType = 0x03
	StatusError           StatusType = 0x04
	StatusAdvisoryCleared StatusType = 0x12
	StatusWarningCleared  StatusType = 0x13
	StatusErrorCleared    StatusType = 0x14
)

// StatusTypeFromByte decodes a status type, reporting ok=false for unknown
// values so callers can NackReason DataOutOfRange.
func StatusTypeFromByte(b byte) (StatusType, bool) {
	switch StatusType(b) {
	case StatusNone, StatusGetLastMessage, StatusAdvisory, StatusWarning, StatusError,
		StatusAdvisoryCleared, StatusWarningCleared, StatusErrorCleared:
		return StatusType(b), true
	default:
		return 0, false
	}
}

// Severity returns the low nibble used for filtering (status_type & 0x0F).
func (s StatusType) Severity() uint8 {
	return uint8(s) & 0x0F
}

// StatusMessage is one entry of a responder's status vector, ANSI E1.20
// Table A-4's STATUS_MESSAGES response body, 9 bytes on the wire.
type StatusMessage struct {
	SubDeviceID     uint16
	StatusType      StatusType
	StatusMessageID uint16
	DataValue1      uint16
	DataValue2      uint16
}

// StatusMessageWireSize is the fixed encoded size of a StatusMessage.
const StatusMessageWireSize = 9

// Bytes serializes the status message to its 9-byte wire form.
func (s StatusMessage) Bytes() []byte {
	b := make([]byte, StatusMessageWireSize)
	binary.BigEndian.PutUint16(b[0:2], s.SubDeviceID)
	b[2] = byte(s.StatusType)
	binary.BigEndian.PutUint16(b[3:5], s.StatusMessageID)
	binary.BigEndian.PutUint16(b[5:7], s.DataValue1)
	binary.BigEndian.PutUint16(b[7:9], s.DataValue2)
	return b
}

// StatusMessageFromBytes decodes a 9-byte status message.
func StatusMessageFromBytes(b []byte) (StatusMessage, error) {
	if len(b) < StatusMessageWireSize {
		return StatusMessage{}, newCodecError(ReasonBufferTooSmall, "status message")
	}
	return StatusMessage{
		SubDeviceID:     binary.BigEndian.Uint16(b[0:2]),
		StatusType:      StatusType(b[2]),
		StatusMessageID: binary.BigEndian.Uint16(b[3:5]),
		DataValue1:      binary.BigEndian.Uint16(b[5:7]),
		DataValue2:      binary.BigEndian.Uint16(b[7:9]),
	}, nil
}

// DeviceInfo is the DEVICE_INFO response body, 19 bytes, ANSI E1.20 Table A-9.
type DeviceInfo struct {
	ProtocolVersion   uint16 // always 0x0100
	DeviceModelID     uint16
	ProductCategory   uint16
	SoftwareVersionID uint32
	DMXFootprint      uint16
	DMXPersonality    uint16
	DMXStartAddress   DmxStartAddress
	SubDeviceCount    uint16
	SensorCount       uint8
}

// DeviceInfoWireSize is the fixed encoded size of DeviceInfo.
const DeviceInfoWireSize = 19

// Bytes serializes DeviceInfo to its 19-byte wire form.
func (d DeviceInfo) Bytes() []byte {
	b := make([]byte, DeviceInfoWireSize)
	binary.BigEndian.PutUint16(b[0:2], 0x0100)
	binary.BigEndian.PutUint16(b[2:4], d.DeviceModelID)
	binary.BigEndian.PutUint16(b[4:6], d.ProductCategory)
	binary.BigEndian.PutUint32(b[6:10], d.SoftwareVersionID)
	binary.BigEndian.PutUint16(b[10:12], d.DMXFootprint)
	binary.BigEndian.PutUint16(b[12:14], d.DMXPersonality)
	binary.BigEndian.PutUint16(b[14:16], d.DMXStartAddress.ToWire())
	binary.BigEndian.PutUint16(b[16:18], d.SubDeviceCount)
	b[18] = d.SensorCount
	return b
}

// DeviceInfoFromBytes decodes a 19-byte DEVICE_INFO body.
func DeviceInfoFromBytes(b []byte) (DeviceInfo, error) {
	if len(b) < DeviceInfoWireSize {
		return DeviceInfo{}, newCodecError(ReasonBufferTooSmall, "device info")
	}
	addr, err := DmxStartAddressFromWire(binary.BigEndian.Uint16(b[14:16]))
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{
		ProtocolVersion:   binary.BigEndian.Uint16(b[0:2]),
		DeviceModelID:     binary.BigEndian.Uint16(b[2:4]),
		ProductCategory:   binary.BigEndian.Uint16(b[4:6]),
		SoftwareVersionID: binary.BigEndian.Uint32(b[6:10]),
		DMXFootprint:      binary.BigEndian.Uint16(b[10:12]),
		DMXPersonality:    binary.BigEndian.Uint16(b[12:14]),
		DMXStartAddress:   addr,
		SubDeviceCount:    binary.BigEndian.Uint16(b[16:18]),
		SensorCount:       b[18],
	}, nil
}

// DiscoveryMuteResponse is the body of a DISC_MUTE/DISC_UN_MUTE reply: four
// boolean flags packed into a 16-bit control field plus an optional binding
// UID, ANSI E1.20 Table A-17.
type DiscoveryMuteResponse struct {
	ManagedProxy  bool
	SubDevice     bool
	BootLoader    bool
	ProxyDevice   bool
	BindingUID    *UID // nil when the responder has a single port
}

// Bytes serializes the control field (and, if present, the binding UID).
func (d DiscoveryMuteResponse) Bytes() []byte {
	var control uint16
	if d.ManagedProxy {
		control |= 1 << 0
	}
	if d.SubDevice {
		control |= 1 << 1
	}
	if d.BootLoader {
		control |= 1 << 2
	}
	if d.ProxyDevice {
		control |= 1 << 3
	}
	b := make([]byte, 2, 8)
	binary.BigEndian.PutUint16(b, control)
	if d.BindingUID != nil {
		uid := d.BindingUID.Bytes()
		b = append(b, uid[:]...)
	}
	return b
}

// DiscoveryMuteResponseFromBytes decodes a 2-byte or 8-byte DISC_MUTE body.
func DiscoveryMuteResponseFromBytes(b []byte) (DiscoveryMuteResponse, error) {
	if len(b) != 2 && len(b) != 8 {
		return DiscoveryMuteResponse{}, newCodecError(ReasonBufferTooSmall, "discovery mute response")
	}
	control := binary.BigEndian.Uint16(b[0:2])
	d := DiscoveryMuteResponse{
		ManagedProxy: control&(1<<0) != 0,
		SubDevice:    control&(1<<1) != 0,
		BootLoader:   control&(1<<2) != 0,
		ProxyDevice:  control&(1<<3) != 0,
	}
	if len(b) == 8 {
		uid := UIDFromBytes(b[2:8])
		d.BindingUID = &uid
	}
	return d, nil
}
