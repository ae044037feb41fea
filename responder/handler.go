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

import "github.com/facebook/go-rdm/protocol"

// RequestContext is the mutable state a Handler may inspect (and, for the
// *_address/footprint fields, is expected to treat as read-only snapshot --
// the engine itself owns mutation of its own dispatch table entries).
type RequestContext struct {
	DMXStartAddress protocol.DmxStartAddress
	DMXFootprint    uint16
	DiscoveryMuted  bool
	MessageCount    uint8
}

// ResultKind tags the variant of HandlerResult, following the rest of this
// module's tagged-union convention over an interface hierarchy.
type ResultKind uint8

// ResultKind values.
const (
	ResultAcknowledged ResultKind = iota
	ResultAcknowledgedOverflow
	ResultNotAcknowledged
	ResultAcknowledgedTimer
	ResultNoResponse
	ResultCustom
)

// HandlerResult is what a Handler returns for a PID the engine does not
// service itself.
type HandlerResult struct {
	Kind ResultKind

	Payload    []byte              // valid for Acknowledged / AcknowledgedOverflow
	NackReason protocol.NackReason // valid for NotAcknowledged
	DelayUnits uint16              // valid for AcknowledgedTimer, 100ms units
	Custom     protocol.RdmData    // valid for Custom, sent verbatim
}

// Acknowledged builds an Ack result carrying payload.
func Acknowledged(payload []byte) HandlerResult {
	return HandlerResult{Kind: ResultAcknowledged, Payload: payload}
}

// AcknowledgedOverflow builds an AckOverflow result signalling more pages follow.
func AcknowledgedOverflow(payload []byte) HandlerResult {
	return HandlerResult{Kind: ResultAcknowledgedOverflow, Payload: payload}
}

// NotAcknowledged builds a NackReason result.
func NotAcknowledged(reason protocol.NackReason) HandlerResult {
	return HandlerResult{Kind: ResultNotAcknowledged, NackReason: reason}
}

// AcknowledgedTimer builds an AckTimer result asking the controller to
// retry after delayUnits * 100ms.
func AcknowledgedTimer(delayUnits uint16) HandlerResult {
	return HandlerResult{Kind: ResultAcknowledgedTimer, DelayUnits: delayUnits}
}

// NoResponse builds a silent result: nothing is transmitted.
func NoResponse() HandlerResult {
	return HandlerResult{Kind: ResultNoResponse}
}

// Custom builds a result sent verbatim, bypassing the engine's own framing
// of command_class/response_type.
func Custom(resp protocol.RdmData) HandlerResult {
	return HandlerResult{Kind: ResultCustom, Custom: resp}
}

// Handler is the delegation surface for PIDs the responder engine does not
// know how to service itself (manufacturer-specific PIDs, sensors, and
// anything else beyond the built-in dispatch table).
type Handler interface {
	// Handle is called with the parsed request and a snapshot of the
	// engine's context, and returns how to respond.
	Handle(req protocol.RdmData, ctx RequestContext) HandlerResult

	// HandleDMX is called for any frame whose start code is not 0xCC --
	// i.e. plain DMX512 data, not RDM. No response is ever sent for these.
	HandleDMX(frame []byte)
}

// NopHandler answers every delegated PID with NackReason(UnknownPid) and
// ignores DMX frames; useful as a default for responders that implement
// only the built-in dispatch table.
type NopHandler struct{}

// Handle implements Handler.
func (NopHandler) Handle(protocol.RdmData, RequestContext) HandlerResult {
	return NotAcknowledged(protocol.NackUnknownPid)
}

// HandleDMX implements Handler.
func (NopHandler) HandleDMX([]byte) {}
