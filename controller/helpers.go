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
	"encoding/binary"
	"fmt"

	"github.com/facebook/go-rdm/protocol"
)

// GetDeviceInfo issues DEVICE_INFO.get and decodes the response.
func (c *Controller) GetDeviceInfo(uid protocol.UID) (protocol.DeviceInfo, error) {
	out, err := c.Get(protocol.Device(uid), protocol.PIDDeviceInfo, nil)
	if err != nil {
		return protocol.DeviceInfo{}, err
	}
	return protocol.DeviceInfoFromBytes(out.Info.ParameterData)
}

// GetSoftwareVersionLabel issues SOFTWARE_VERSION_LABEL.get and returns the
// ASCII label verbatim.
func (c *Controller) GetSoftwareVersionLabel(uid protocol.UID) (string, error) {
	out, err := c.Get(protocol.Device(uid), protocol.PIDSoftwareVersionLabel, nil)
	if err != nil {
		return "", err
	}
	return string(out.Info.ParameterData), nil
}

// GetIdentifyDevice issues IDENTIFY_DEVICE.get; the response is a single
// byte, 0x00 or 0x01.
func (c *Controller) GetIdentifyDevice(uid protocol.UID) (bool, error) {
	out, err := c.Get(protocol.Device(uid), protocol.PIDIdentifyDevice, nil)
	if err != nil {
		return false, err
	}
	if len(out.Info.ParameterData) != 1 {
		return false, ErrNotDeserializable
	}
	return out.Info.ParameterData[0] != 0, nil
}

// SetIdentifyDevice issues IDENTIFY_DEVICE.set.
func (c *Controller) SetIdentifyDevice(uid protocol.UID, on bool) error {
	var b byte
	if on {
		b = 1
	}
	_, err := c.Set(protocol.Device(uid), protocol.PIDIdentifyDevice, []byte{b})
	return err
}

// GetDMXStartAddress issues DMX_START_ADDRESS.get.
func (c *Controller) GetDMXStartAddress(uid protocol.UID) (protocol.DmxStartAddress, error) {
	out, err := c.Get(protocol.Device(uid), protocol.PIDDMXStartAddress, nil)
	if err != nil {
		return protocol.DmxStartAddress{}, err
	}
	if len(out.Info.ParameterData) != 2 {
		return protocol.DmxStartAddress{}, ErrNotDeserializable
	}
	return protocol.DmxStartAddressFromWire(binary.BigEndian.Uint16(out.Info.ParameterData))
}

// SetDMXStartAddress issues DMX_START_ADDRESS.set. Only an address in
// 1..=512 can be set; NoDmxStartAddress is rejected without sending.
func (c *Controller) SetDMXStartAddress(uid protocol.UID, addr protocol.DmxStartAddress) error {
	if _, err := protocol.NewDmxStartAddress(addr.Address); !addr.Valid || err != nil {
		return fmt.Errorf("rdm: controller: dmx start address to set must be in 1..=512")
	}
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], addr.ToWire())
	_, err := c.Set(protocol.Device(uid), protocol.PIDDMXStartAddress, b[:])
	return err
}

// GetQueuedMessage drains one entry from uid's queued-message FIFO.
// statusType selects the filter level the way QUEUED_MESSAGE.get's single
// parameter byte does (StatusGetLastMessage replays the most recent reply
// instead of dequeuing).
func (c *Controller) GetQueuedMessage(uid protocol.UID, statusType protocol.StatusType) (protocol.RdmData, error) {
	out, err := c.Get(protocol.Device(uid), protocol.PIDQueuedMessage, []byte{byte(statusType)})
	if err != nil {
		return protocol.RdmData{}, err
	}
	return out.Info, nil
}

// GetStatusMessages issues STATUS_MESSAGES.get with the given severity
// filter and decodes every 9-byte entry in the reply. The returned bool is
// true when the reply was AckOverflow: more entries remain and the caller
// should re-issue the identical GET to continue.
func (c *Controller) GetStatusMessages(uid protocol.UID, statusType protocol.StatusType) ([]protocol.StatusMessage, bool, error) {
	out, err := c.Get(protocol.Device(uid), protocol.PIDStatusMessages, []byte{byte(statusType)})
	if err != nil {
		return nil, false, err
	}
	body := out.Info.ParameterData
	var msgs []protocol.StatusMessage
	for len(body) >= protocol.StatusMessageWireSize {
		m, err := protocol.StatusMessageFromBytes(body)
		if err != nil {
			return msgs, out.More, err
		}
		msgs = append(msgs, m)
		body = body[protocol.StatusMessageWireSize:]
	}
	return msgs, out.More, nil
}

// GetSupportedParameters issues SUPPORTED_PARAMETERS.get once and decodes
// one page of PIDs (2 bytes each). The returned bool is true when the reply
// was AckOverflow: more pages remain and the caller should re-issue the
// identical GET to continue, as ANSI E1.20 §7.2 requires.
func (c *Controller) GetSupportedParameters(uid protocol.UID) ([]protocol.ParameterID, bool, error) {
	out, err := c.Get(protocol.Device(uid), protocol.PIDSupportedParameters, nil)
	if err != nil {
		return nil, false, err
	}
	pids, err := decodePidList(out.Info.ParameterData)
	return pids, out.More, err
}

func decodePidList(body []byte) ([]protocol.ParameterID, error) {
	if len(body)%2 != 0 {
		return nil, ErrNotDeserializable
	}
	pids := make([]protocol.ParameterID, 0, len(body)/2)
	for i := 0; i < len(body); i += 2 {
		pids = append(pids, protocol.ParameterID(binary.BigEndian.Uint16(body[i:i+2])))
	}
	return pids, nil
}
