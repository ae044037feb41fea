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

package controller

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/go-rdm/driver"
	"github.com/facebook/go-rdm/protocol"
)

// discoveryReadTimeout is shorter than DefaultReadTimeout: a branch with no
// responders in range must time out quickly for the search to make
// progress at a useful rate.
const discoveryReadTimeout = 1 * time.Millisecond

// Discover runs a full binary-search discovery over UIDs 1 through
// 0xFFFFFFFFFFFE, per ANSI E1.20 Annex C, and returns every UID that
// answered and was muted. It mutes each device as it's found so repeated
// branches don't keep finding it.
func (c *Controller) Discover() ([]protocol.UID, error) {
	var found []protocol.UID
	if err := c.discoverBranch(1, 0xFFFFFFFFFFFE, &found); err != nil {
		return found, err
	}
	return found, nil
}

// discoverBranch probes [lower, upper] with DISC_UNIQUE_BRANCH. An empty
// branch returns nothing; a single responder answers cleanly and is muted
// (and recorded only once the mute is answered; a mute that times out
// records nothing); two or more answering at once collide, and the branch
// is split in half and each half searched recursively, upper half first.
// A collision in a branch of at most two UIDs is not split further.
func (c *Controller) discoverBranch(lower, upper uint64, found *[]protocol.UID) error {
	resp, err := c.sendUniqueBranch(lower, upper)
	switch {
	case err == errNoBranchResponse:
		return nil
	case err != nil:
		return err
	}

	if resp.ok {
		if _, err := c.DiscMute(resp.uid); err != nil {
			if errors.Is(err, driver.ErrTimeout) {
				log.Warnf("rdm: controller: mute timed out for %s, not recording it", resp.uid)
				return nil
			}
			return err
		}
		*found = append(*found, resp.uid)
		return nil
	}

	// collision: split the branch and recurse into each half.
	if upper-lower <= 1 {
		return nil
	}
	mid := lower + (upper-lower)/2
	if err := c.discoverBranch(mid+1, upper, found); err != nil {
		return err
	}
	return c.discoverBranch(lower, mid, found)
}

type branchResult struct {
	ok  bool
	uid protocol.UID
}

var errNoBranchResponse = &branchTimeoutError{}

type branchTimeoutError struct{}

func (*branchTimeoutError) Error() string { return "rdm: controller: no discovery response" }

// sendUniqueBranch transmits DISC_UNIQUE_BRANCH[lower, upper] as a broadcast
// request (with a break, like any other request) and reads back the raw,
// possibly-collided discovery response, which arrives with no break. A read
// timeout means no responder is in range; any other driver error is
// returned as is.
func (c *Controller) sendUniqueBranch(lower, upper uint64) (branchResult, error) {
	data := make([]byte, 12)
	lo := protocol.UIDFromUint64(lower).Bytes()
	hi := protocol.UIDFromUint64(upper).Bytes()
	copy(data[0:6], lo[:])
	copy(data[6:12], hi[:])

	req := protocol.RdmData{
		Destination:       protocol.Broadcast(),
		Source:            protocol.Device(c.UID),
		TransactionNumber: c.nextTransaction(),
		CommandClass:      protocol.CommandClassDiscoveryRequest,
		ParameterID:       protocol.PIDDiscUniqueBranch,
		ParameterData:     data,
		IsResponse:        false,
	}
	raw, err := protocol.Serialize(req)
	if err != nil {
		return branchResult{}, err
	}
	if _, err := c.Driver.WriteFrames(raw); err != nil {
		return branchResult{}, err
	}

	buf := make([]byte, protocol.DiscoveryResponseSize+protocol.PreambleCount)
	n, err := c.Driver.ReadFramesNoBreak(buf, discoveryReadTimeout)
	if err != nil {
		if errors.Is(err, driver.ErrTimeout) {
			return branchResult{}, errNoBranchResponse
		}
		return branchResult{}, err
	}

	uid, decodeErr := protocol.DecodeDiscoveryResponse(buf[:n])
	if decodeErr != nil {
		// a collision of two or more responders produces noise that fails
		// to decode cleanly; treat it the same as "more than one answered".
		return branchResult{ok: false}, nil
	}
	return branchResult{ok: true, uid: uid}, nil
}

func (c *Controller) nextTransaction() uint8 {
	c.currentTransaction++
	return c.currentTransaction
}

// DiscMute sends DISC_MUTE to uid and returns the decoded mute response.
// DISC_MUTE is a Discovery-class request, not a Get -- a conformant
// responder only recognizes it under CommandClassDiscoveryRequest.
func (c *Controller) DiscMute(uid protocol.UID) (protocol.DiscoveryMuteResponse, error) {
	out, err := c.discoveryRequest(protocol.Device(uid), protocol.PIDDiscMute, nil)
	if err != nil {
		return protocol.DiscoveryMuteResponse{}, err
	}
	return protocol.DiscoveryMuteResponseFromBytes(out.Info.ParameterData)
}

// DiscUnMute sends DISC_UN_MUTE to uid (or broadcast, if uid.IsBroadcast()),
// as a Discovery-class request for the same reason DiscMute is.
func (c *Controller) DiscUnMute(uid protocol.UID) (protocol.DiscoveryMuteResponse, error) {
	dest := protocol.Device(uid)
	if uid.IsBroadcast() {
		dest = protocol.Broadcast()
	}
	out, err := c.discoveryRequest(dest, protocol.PIDDiscUnMute, nil)
	if err != nil {
		if err == ErrRequestWasBroadcast {
			return protocol.DiscoveryMuteResponse{}, nil
		}
		return protocol.DiscoveryMuteResponse{}, err
	}
	return protocol.DiscoveryMuteResponseFromBytes(out.Info.ParameterData)
}
