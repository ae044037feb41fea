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

package responder

import (
	"encoding/binary"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/go-rdm/protocol"
)

func responseClassFor(cc protocol.CommandClass) protocol.CommandClass {
	switch cc {
	case protocol.CommandClassGetRequest:
		return protocol.CommandClassGetResponse
	case protocol.CommandClassSetRequest:
		return protocol.CommandClassSetResponse
	default:
		return protocol.CommandClassDiscoveryResponse
	}
}

// buildAck constructs (without transmitting) an Ack response to req.
func (s *State) buildAck(req protocol.RdmData, pid protocol.ParameterID, payload []byte) protocol.RdmData {
	return protocol.RdmData{
		Destination:       req.Source,
		Source:            protocol.Device(s.UID),
		TransactionNumber: req.TransactionNumber,
		MessageCount:      uint8(len(s.queue)),
		SubDevice:         req.SubDevice,
		CommandClass:      responseClassFor(req.CommandClass),
		ParameterID:       pid,
		ParameterData:     payload,
		IsResponse:        true,
		ResponseType:      protocol.ResponseTypeAck,
	}
}

func (s *State) respondAck(req protocol.RdmData, payload []byte) {
	s.transmit(s.buildAck(req, req.ParameterID, payload))
}

func (s *State) respondAckOverflow(req protocol.RdmData, payload []byte) {
	resp := s.buildAck(req, req.ParameterID, payload)
	resp.ResponseType = protocol.ResponseTypeAckOverflow
	s.transmit(resp)
}

func (s *State) respondAckTimer(req protocol.RdmData, delayUnits uint16) {
	var payload [2]byte
	binary.BigEndian.PutUint16(payload[:], delayUnits)
	resp := s.buildAck(req, req.ParameterID, payload[:])
	resp.ResponseType = protocol.ResponseTypeAckTimer
	s.transmit(resp)
}

func (s *State) respondNack(req protocol.RdmData, reason protocol.NackReason) {
	if req.Destination.IsBroadcast() {
		return
	}
	if s.Metrics != nil {
		s.Metrics.observeNack(nackLabel(reason))
	}
	var payload [2]byte
	binary.BigEndian.PutUint16(payload[:], uint16(reason))
	resp := s.buildAck(req, req.ParameterID, payload[:])
	resp.ResponseType = protocol.ResponseTypeNackReason
	s.transmit(resp)
}

func nackLabel(reason protocol.NackReason) string {
	switch reason {
	case protocol.NackUnknownPid:
		return "unknown_pid"
	case protocol.NackFormatError:
		return "format_error"
	case protocol.NackHardwareFault:
		return "hardware_fault"
	case protocol.NackProxyReject:
		return "proxy_reject"
	case protocol.NackWriteProtect:
		return "write_protect"
	case protocol.NackUnsupportedCommandClass:
		return "unsupported_command_class"
	case protocol.NackDataOutOfRange:
		return "data_out_of_range"
	case protocol.NackBufferFull:
		return "buffer_full"
	case protocol.NackPacketSizeUnsupported:
		return "packet_size_unsupported"
	case protocol.NackSubDeviceOutOfRange:
		return "sub_device_out_of_range"
	case protocol.NackProxyBufferFull:
		return "proxy_buffer_full"
	default:
		return "unknown"
	}
}

// transmit serializes and writes resp to the bus, unless its destination is
// a broadcast address (no response is ever sent for one).
func (s *State) transmit(resp protocol.RdmData) {
	if resp.Destination.IsBroadcast() {
		return
	}
	raw, err := protocol.Serialize(resp)
	if err != nil {
		log.Errorf("rdm: responder: failed to serialize response: %v", err)
		return
	}
	if _, err := s.Driver.WriteFrames(raw); err != nil {
		log.Warnf("rdm: responder: response write failed: %v", err)
	}
}
