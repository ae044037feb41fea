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

// Package controller implements the RDM controller role: transaction-ID
// generation, request/response matching, typed get/set helpers, and
// binary-search discovery. It is the read side of the driver -- see
// package responder for the peer that services these requests.
package controller

import (
	"encoding/binary"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/go-rdm/driver"
	"github.com/facebook/go-rdm/protocol"
)

// DefaultReadTimeout is the per-response wait the controller uses while
// draining stale transactions off the bus.
const DefaultReadTimeout = 2800 * time.Microsecond

// Controller holds the session state a controller needs across requests:
// its own UID and the wrapping transaction counter that disambiguates
// replies on the half-duplex bus.
type Controller struct {
	UID                protocol.UID
	Driver             driver.Driver
	ReadTimeout        time.Duration
	currentTransaction uint8
	lastMessageCount   uint8
}

// New creates a Controller bound to uid and d, using DefaultReadTimeout.
func New(uid protocol.UID, d driver.Driver) *Controller {
	return &Controller{UID: uid, Driver: d, ReadTimeout: DefaultReadTimeout}
}

// NotMatchingError is returned when a response doesn't belong to the
// in-flight request: wrong destination UID, or a Request arrived when a
// Response was expected.
type NotMatchingError struct {
	Reason string
}

func (e *NotMatchingError) Error() string {
	return fmt.Sprintf("rdm: controller: response does not match request: %s", e.Reason)
}

// NotReadyError wraps an AckTimer response: the responder needs more time
// before the caller should retry, expressed in 100ms units.
type NotReadyError struct {
	DelayUnits uint16
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("rdm: controller: not ready, retry after %dx100ms", e.DelayUnits)
}

// NotAcknowledgedError wraps a NackReason response.
type NotAcknowledgedError struct {
	Reason protocol.NackReason
}

func (e *NotAcknowledgedError) Error() string {
	return fmt.Sprintf("rdm: controller: not acknowledged: reason=0x%04X", uint16(e.Reason))
}

// ErrRequestWasBroadcast is returned instead of a response whenever the
// caller addressed a broadcast destination: no responder ever replies to
// one, so the controller does not wait for bytes that will never arrive.
var ErrRequestWasBroadcast = fmt.Errorf("rdm: controller: request was broadcast, no response expected")

// ErrNotDeserializable is returned when a response payload does not have
// the length its parameter needs: 2 bytes for an AckTimer/NackReason, and
// the sizes the typed helpers expect (1 byte for IDENTIFY_DEVICE, 2 for
// DMX_START_ADDRESS, an even count for a PID list).
var ErrNotDeserializable = fmt.Errorf("rdm: controller: response payload does not have the expected length")

// Outcome is the decoded, successful result of a request: either a
// complete Ack (Info, more=false) or an AckOverflow continuation
// (Info, more=true) the caller should continue by re-issuing the same GET.
type Outcome struct {
	Info protocol.RdmData
	More bool
}

// request sends one RDM request and waits for its matching response. It is
// the single choke point every typed helper below funnels through.
func (c *Controller) request(commandClass protocol.CommandClass, destination protocol.PackageAddress, pid protocol.ParameterID, paramData []byte) (Outcome, error) {
	c.currentTransaction++
	tn := c.currentTransaction

	req := protocol.RdmData{
		Destination:       destination,
		Source:            protocol.Device(c.UID),
		TransactionNumber: tn,
		MessageCount:      0,
		SubDevice:         0,
		CommandClass:      commandClass,
		ParameterID:       pid,
		ParameterData:     paramData,
		IsResponse:        false,
		PortID:            0,
	}

	raw, err := protocol.Serialize(req)
	if err != nil {
		return Outcome{}, err
	}

	if _, err := c.Driver.WriteFrames(raw); err != nil {
		return Outcome{}, err
	}

	// Checked on the wire form, so a Device address holding an all-ones
	// device ID (e.g. Device(protocol.BroadcastUID)) counts as broadcast too.
	dst := destination.Bytes()
	if protocol.PackageAddressFromBytes(dst[:]).IsBroadcast() {
		return Outcome{}, ErrRequestWasBroadcast
	}

	for {
		resp, err := c.readOnePacket()
		if err != nil {
			return Outcome{}, err
		}
		if resp.TransactionNumber != tn {
			log.Debugf("rdm: controller: dropping stale transaction %d (want %d)", resp.TransactionNumber, tn)
			continue
		}
		if !resp.IsResponse {
			return Outcome{}, &NotMatchingError{Reason: "expected response, got request"}
		}
		wantDest := protocol.Device(c.UID)
		if resp.Destination != wantDest {
			return Outcome{}, &NotMatchingError{Reason: "response addressed to a different controller"}
		}

		c.lastMessageCount = resp.MessageCount
		return c.classify(resp)
	}
}

func (c *Controller) classify(resp protocol.RdmData) (Outcome, error) {
	switch resp.ResponseType {
	case protocol.ResponseTypeAck:
		return Outcome{Info: resp, More: false}, nil
	case protocol.ResponseTypeAckOverflow:
		return Outcome{Info: resp, More: true}, nil
	case protocol.ResponseTypeAckTimer:
		if len(resp.ParameterData) != 2 {
			return Outcome{}, ErrNotDeserializable
		}
		return Outcome{}, &NotReadyError{DelayUnits: binary.BigEndian.Uint16(resp.ParameterData)}
	case protocol.ResponseTypeNackReason:
		if len(resp.ParameterData) != 2 {
			return Outcome{}, ErrNotDeserializable
		}
		return Outcome{}, &NotAcknowledgedError{Reason: protocol.NackReason(binary.BigEndian.Uint16(resp.ParameterData))}
	default:
		return Outcome{}, &NotMatchingError{Reason: "unknown response type"}
	}
}

// readOnePacket reads the 3-byte header to learn message_length, then reads
// the rest without waiting on another break.
func (c *Controller) readOnePacket() (protocol.RdmData, error) {
	head := make([]byte, 3)
	if _, err := c.Driver.ReadFrames(head, c.ReadTimeout); err != nil {
		return protocol.RdmData{}, err
	}
	messageLength := int(head[2])
	total := messageLength + 2
	if messageLength < 1 || total > protocol.MaxPacketSize || total < protocol.MinPacketSize {
		return protocol.RdmData{}, fmt.Errorf("rdm: controller: %s", protocol.ReasonWrongMessageLength)
	}

	rest := make([]byte, total-len(head))
	if _, err := c.Driver.ReadFramesNoBreak(rest, c.ReadTimeout); err != nil {
		return protocol.RdmData{}, err
	}

	raw := append(head, rest...)
	return protocol.Deserialize(raw)
}

// Get issues a GET request and returns its Outcome.
func (c *Controller) Get(destination protocol.PackageAddress, pid protocol.ParameterID, paramData []byte) (Outcome, error) {
	return c.request(protocol.CommandClassGetRequest, destination, pid, paramData)
}

// Set issues a SET request and returns its Outcome.
func (c *Controller) Set(destination protocol.PackageAddress, pid protocol.ParameterID, paramData []byte) (Outcome, error) {
	return c.request(protocol.CommandClassSetRequest, destination, pid, paramData)
}

// discoveryRequest issues a request under the Discovery command class.
// DISC_MUTE and DISC_UN_MUTE are only valid there -- a conformant responder
// Nacks them under Get/Set (see responder.State.dispatch, which answers the
// discovery PIDs under a Get/Set class with UnsupportedCommandClass).
func (c *Controller) discoveryRequest(destination protocol.PackageAddress, pid protocol.ParameterID, paramData []byte) (Outcome, error) {
	return c.request(protocol.CommandClassDiscoveryRequest, destination, pid, paramData)
}

// LastMessageCount is the message_count of the most recently accepted
// response, mirroring the responder's queue depth at the time it replied.
func (c *Controller) LastMessageCount() uint8 {
	return c.lastMessageCount
}
