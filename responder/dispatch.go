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

// dispatchDiscovery handles the three DiscoveryCommand PIDs. A DiscoveryCommand
// naming anything else is dropped silently.
func (s *State) dispatchDiscovery(req protocol.RdmData) {
	switch req.ParameterID {
	case protocol.PIDDiscUniqueBranch:
		s.dispatchDiscUniqueBranch(req)
	case protocol.PIDDiscMute:
		s.discoveryMuted = true
		if s.Metrics != nil {
			s.Metrics.observeMute()
		}
		s.respondMuteState(req)
	case protocol.PIDDiscUnMute:
		s.discoveryMuted = false
		s.respondMuteState(req)
	default:
		// silence: not one of the three discovery PIDs.
	}
}

func (s *State) dispatchDiscUniqueBranch(req protocol.RdmData) {
	if s.discoveryMuted {
		return
	}
	if len(req.ParameterData) != 12 {
		return
	}
	lower := protocol.UIDFromBytes(req.ParameterData[0:6])
	upper := protocol.UIDFromBytes(req.ParameterData[6:12])
	self := s.UID.ToUint64()
	if self < lower.ToUint64() || self > upper.ToUint64() {
		return
	}
	raw := protocol.EncodeDiscoveryResponse(s.UID)
	if _, err := s.Driver.WriteFramesNoBreak(raw); err != nil {
		log.Warnf("rdm: responder: discovery response write failed: %v", err)
	}
}

func (s *State) respondMuteState(req protocol.RdmData) {
	resp := protocol.DiscoveryMuteResponse{}
	s.respondAck(req, resp.Bytes())
}

func (s *State) dispatchSupportedParameters(req protocol.RdmData) {
	if !s.requireGet(req) {
		return
	}
	all := append(append([]protocol.ParameterID(nil), internalPids...), s.SupportedParameters...)

	iteration := 0
	if s.paging.active {
		iteration = s.paging.iteration
	}
	start := iteration * supportedParamsPageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + supportedParamsPageSize
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	payload := make([]byte, 0, len(page)*2)
	for _, pid := range page {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(pid))
		payload = append(payload, b[:]...)
	}

	if end < len(all) {
		s.paging = pagingState{active: true, iteration: iteration + 1}
		if s.Metrics != nil {
			s.Metrics.observeOverflowPage()
		}
		s.respondAckOverflow(req, payload)
		return
	}
	s.paging = pagingState{}
	s.respondAck(req, payload)
}

func (s *State) dispatchDeviceInfo(req protocol.RdmData) {
	if !s.requireGet(req) {
		return
	}
	info := protocol.DeviceInfo{
		DeviceModelID:     s.Info.DeviceModelID,
		ProductCategory:   s.Info.ProductCategory,
		SoftwareVersionID: s.Info.SoftwareVersionID,
		DMXFootprint:      s.Info.DMXFootprint,
		DMXPersonality:    1,
		DMXStartAddress:   s.dmxStartAddress,
		SubDeviceCount:    s.Info.SubDeviceCount,
		SensorCount:       s.Info.SensorCount,
	}
	s.respondAck(req, info.Bytes())
}

func (s *State) dispatchSoftwareVersionLabel(req protocol.RdmData) {
	if !s.requireGet(req) {
		return
	}
	label := s.Info.SoftwareVersion
	if len(label) > 32 {
		label = label[:32]
	}
	s.respondAck(req, []byte(label))
}

func (s *State) dispatchDMXStartAddress(req protocol.RdmData) {
	switch req.CommandClass {
	case protocol.CommandClassGetRequest:
		if !s.requireGet(req) {
			return
		}
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], s.dmxStartAddress.ToWire())
		s.respondAck(req, b[:])
	case protocol.CommandClassSetRequest:
		if req.Destination.IsBroadcast() {
			return
		}
		if len(req.ParameterData) != 2 {
			s.respondNack(req, protocol.NackFormatError)
			return
		}
		addr, err := protocol.DmxStartAddressFromWire(binary.BigEndian.Uint16(req.ParameterData))
		if err != nil {
			s.respondNack(req, protocol.NackDataOutOfRange)
			return
		}
		s.dmxStartAddress = addr
		s.respondAck(req, nil)
	default:
		s.respondNack(req, protocol.NackUnsupportedCommandClass)
	}
}

func (s *State) dispatchIdentifyDevice(req protocol.RdmData) {
	switch req.CommandClass {
	case protocol.CommandClassGetRequest:
		if !s.requireGet(req) {
			return
		}
		var b byte
		if s.identify {
			b = 1
		}
		s.respondAck(req, []byte{b})
	case protocol.CommandClassSetRequest:
		if req.Destination.IsBroadcast() {
			return
		}
		if len(req.ParameterData) != 1 {
			s.respondNack(req, protocol.NackFormatError)
			return
		}
		s.identify = req.ParameterData[0] != 0
		s.respondAck(req, nil)
	default:
		s.respondNack(req, protocol.NackUnsupportedCommandClass)
	}
}

func (s *State) dispatchQueuedMessage(req protocol.RdmData) {
	if !s.requireGet(req) {
		return
	}
	if len(req.ParameterData) != 1 {
		s.respondNack(req, protocol.NackFormatError)
		return
	}
	statusType, ok := protocol.StatusTypeFromByte(req.ParameterData[0])
	if !ok {
		s.respondNack(req, protocol.NackDataOutOfRange)
		return
	}

	switch statusType {
	case protocol.StatusNone:
		s.respondNack(req, protocol.NackDataOutOfRange)
	case protocol.StatusGetLastMessage:
		if s.lastQueuedMessage == nil {
			s.respondAck(req, nil)
			return
		}
		replay := *s.lastQueuedMessage
		replay.TransactionNumber = req.TransactionNumber
		replay.MessageCount = uint8(len(s.queue))
		s.transmit(replay)
	case protocol.StatusAdvisory, protocol.StatusWarning, protocol.StatusError:
		if len(s.queue) > 0 {
			msg := s.queue[0]
			s.queue = s.queue[1:]
			if s.Metrics != nil {
				s.Metrics.setQueueDepth(len(s.queue))
			}
			msg.Destination = req.Source
			msg.Source = protocol.Device(s.UID)
			msg.TransactionNumber = req.TransactionNumber
			msg.MessageCount = uint8(len(s.queue))
			msg.IsResponse = true
			s.transmit(msg)
			cp := msg
			s.lastQueuedMessage = &cp
			return
		}
		payload := s.filterStatusVec(statusType)
		resp := s.buildAck(req, protocol.PIDStatusMessages, payload)
		s.transmit(resp)
		cp := resp
		s.lastQueuedMessage = &cp
	default:
		s.respondNack(req, protocol.NackDataOutOfRange)
	}
}

func (s *State) dispatchStatusMessages(req protocol.RdmData) {
	if !s.requireGet(req) {
		return
	}
	if len(req.ParameterData) != 1 {
		s.respondNack(req, protocol.NackFormatError)
		return
	}
	statusType, ok := protocol.StatusTypeFromByte(req.ParameterData[0])
	if !ok {
		s.respondNack(req, protocol.NackDataOutOfRange)
		return
	}

	switch statusType {
	case protocol.StatusNone:
		s.respondAck(req, nil)
	case protocol.StatusGetLastMessage:
		s.respondAck(req, s.lastStatusPayload)
	case protocol.StatusAdvisory, protocol.StatusWarning, protocol.StatusError:
		payload := s.filterStatusVec(statusType)
		s.lastStatusPayload = payload
		s.respondAck(req, payload)
	default:
		s.respondNack(req, protocol.NackDataOutOfRange)
	}
}

// filterStatusVec keeps entries whose severity is >= requested, serializes
// them, and removes them from statusVec (up to 25 entries per request).
func (s *State) filterStatusVec(requested protocol.StatusType) []byte {
	const maxEntries = 25
	var payload []byte
	var remaining []protocol.StatusMessage
	taken := 0
	for _, m := range s.statusVec {
		if taken < maxEntries && m.StatusType.Severity() >= requested.Severity() {
			payload = append(payload, m.Bytes()...)
			taken++
			continue
		}
		remaining = append(remaining, m)
	}
	s.statusVec = remaining
	return payload
}

// PushStatus appends a status message to the responder's status vector,
// the way an embedded firmware's fault reporting would.
func (s *State) PushStatus(m protocol.StatusMessage) {
	s.statusVec = append(s.statusVec, m)
}

// PushQueuedMessage enqueues a full RdmData response to be delivered on the
// next matching QUEUED_MESSAGE.get, maintaining FIFO order.
func (s *State) PushQueuedMessage(msg protocol.RdmData) {
	s.queue = append(s.queue, msg)
	if s.Metrics != nil {
		s.Metrics.setQueueDepth(len(s.queue))
	}
}
