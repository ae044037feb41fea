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

// Package responder implements the RDM responder role: address filtering,
// the built-in dispatch table (discovery, device info, DMX start address,
// queued messages, status messages, identify), SUPPORTED_PARAMETERS paging,
// and delegation to a user Handler for everything else.
package responder

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/go-rdm/driver"
	"github.com/facebook/go-rdm/protocol"
)

// PollTimeout is the per-call wait poll() gives the driver before reporting
// no packet, matched to how little dead time a responder can afford on a
// shared bus.
const PollTimeout = 2800 * time.Microsecond

// supportedParamsPageSize is MaxParamData / 2, since each PID is 2 bytes.
const supportedParamsPageSize = protocol.MaxParamData / 2

// internalPids is always present ahead of any user-configured PID list in
// SUPPORTED_PARAMETERS' reply, since both are handled by this engine
// directly rather than delegated to a Handler.
var internalPids = []protocol.ParameterID{protocol.PIDQueuedMessage, protocol.PIDStatusMessages}

// DeviceInfo is the static identity a responder reports via DEVICE_INFO;
// the mutable start address lives on State instead, and the personality is
// always reported as 1.
type DeviceInfo struct {
	DeviceModelID     uint16
	ProductCategory   uint16
	SoftwareVersionID uint32
	SoftwareVersion   string
	DMXFootprint      uint16
	SubDeviceCount    uint16
	SensorCount       uint8
}

// pagingState tracks an in-progress multi-part SUPPORTED_PARAMETERS reply.
type pagingState struct {
	active    bool
	iteration int
}

// State is one responder's session state: identity, queues, and the
// mutable fields DEVICE_INFO/DMX_START_ADDRESS/etc. report.
type State struct {
	UID protocol.UID
	Driver driver.Driver
	Handler Handler
	Metrics *Metrics

	Info       DeviceInfo
	SupportedParameters []protocol.ParameterID // user-configured, appended after internalPids

	dmxStartAddress protocol.DmxStartAddress
	identify        bool
	discoveryMuted  bool

	queue              []protocol.RdmData
	statusVec          []protocol.StatusMessage
	lastQueuedMessage  *protocol.RdmData
	lastStatusPayload  []byte

	paging pagingState
}

// New creates a responder State. A nil handler defaults to NopHandler{}.
func New(uid protocol.UID, d driver.Driver, h Handler, info DeviceInfo) *State {
	if h == nil {
		h = NopHandler{}
	}
	return &State{
		UID:             uid,
		Driver:          d,
		Handler:         h,
		Info:            info,
		dmxStartAddress: protocol.NoDmxStartAddress(),
	}
}

// PollResult reports what Poll observed on the bus this call.
type PollResult struct {
	// NoPacket is true when nothing arrived within PollTimeout.
	NoPacket bool
	// Serviced is true when a decoded RDM packet was dispatched (answered
	// or silently dropped); false alongside NoPacket==false means either a
	// non-RDM frame was forwarded to Handler.HandleDMX or an RDM frame
	// failed to decode and was dropped.
	Serviced bool
}

// Poll attempts to receive and service one frame. It never blocks longer
// than PollTimeout.
func (s *State) Poll() (PollResult, error) {
	buf := make([]byte, protocol.MaxPacketSize)
	n, err := s.Driver.ReadFrames(buf, PollTimeout)
	if err != nil {
		if err == driver.ErrTimeout {
			return PollResult{NoPacket: true}, nil
		}
		return PollResult{}, err
	}
	raw := buf[:n]

	if len(raw) == 0 || raw[0] != protocol.RDMStartCode {
		s.Handler.HandleDMX(raw)
		return PollResult{}, nil
	}

	req, err := protocol.Deserialize(raw)
	if err != nil {
		log.Debugf("rdm: responder: dropping unparseable frame: %v", err)
		return PollResult{}, nil
	}

	s.dispatch(req)
	return PollResult{Serviced: true}, nil
}

func (s *State) acceptsDestination(dest protocol.PackageAddress) bool {
	switch dest.Kind {
	case protocol.AddressBroadcast:
		return true
	case protocol.AddressManufacturerBroadcast:
		return dest.ManufacturerID == s.UID.ManufacturerID
	default:
		return dest.UID == s.UID
	}
}

func (s *State) dispatch(req protocol.RdmData) {
	if req.IsResponse {
		return
	}
	if !s.acceptsDestination(req.Destination) {
		return
	}

	if s.Metrics != nil {
		s.Metrics.observeRequest(commandClassLabel(req.CommandClass))
	}

	if req.CommandClass == protocol.CommandClassDiscoveryRequest {
		s.dispatchDiscovery(req)
		return
	}

	switch req.ParameterID {
	case protocol.PIDDiscUniqueBranch, protocol.PIDDiscMute, protocol.PIDDiscUnMute:
		// discovery PIDs only ever arrive via a DiscoveryCommand class,
		// already handled above; a Get/Set command class naming one of
		// these PIDs is unsupported.
		s.respondNack(req, protocol.NackUnsupportedCommandClass)
		return
	case protocol.PIDSupportedParameters:
		s.dispatchSupportedParameters(req)
	case protocol.PIDDeviceInfo:
		s.dispatchDeviceInfo(req)
	case protocol.PIDSoftwareVersionLabel:
		s.dispatchSoftwareVersionLabel(req)
	case protocol.PIDDMXStartAddress:
		s.dispatchDMXStartAddress(req)
	case protocol.PIDQueuedMessage:
		s.dispatchQueuedMessage(req)
	case protocol.PIDStatusMessages:
		s.dispatchStatusMessages(req)
	case protocol.PIDIdentifyDevice:
		s.dispatchIdentifyDevice(req)
	default:
		s.dispatchHandler(req)
	}
}

func commandClassLabel(cc protocol.CommandClass) string {
	switch cc {
	case protocol.CommandClassDiscoveryRequest:
		return "discovery"
	case protocol.CommandClassGetRequest:
		return "get"
	case protocol.CommandClassSetRequest:
		return "set"
	default:
		return "unknown"
	}
}

// requireGet is the common GET-precondition macro: non-broadcast
// destination, sub_device 0, and command class GET.
func (s *State) requireGet(req protocol.RdmData) bool {
	if req.Destination.IsBroadcast() {
		return false
	}
	if req.SubDevice != 0 {
		s.respondNack(req, protocol.NackSubDeviceOutOfRange)
		return false
	}
	if req.CommandClass != protocol.CommandClassGetRequest {
		s.respondNack(req, protocol.NackUnsupportedCommandClass)
		return false
	}
	return true
}

func (s *State) dispatchHandler(req protocol.RdmData) {
	ctx := RequestContext{
		DMXStartAddress: s.dmxStartAddress,
		DMXFootprint:    s.Info.DMXFootprint,
		DiscoveryMuted:  s.discoveryMuted,
		MessageCount:    uint8(len(s.queue)),
	}
	result := s.Handler.Handle(req, ctx)
	switch result.Kind {
	case ResultAcknowledged:
		s.respondAck(req, result.Payload)
	case ResultAcknowledgedOverflow:
		s.respondAckOverflow(req, result.Payload)
	case ResultNotAcknowledged:
		s.respondNack(req, result.NackReason)
	case ResultAcknowledgedTimer:
		s.respondAckTimer(req, result.DelayUnits)
	case ResultNoResponse:
		// silence
	case ResultCustom:
		s.transmit(result.Custom)
	}
}
