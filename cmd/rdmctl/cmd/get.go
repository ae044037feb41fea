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

package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/go-rdm/protocol"
)

var getUIDFlag string

func init() {
	cmd := &cobra.Command{
		Use:   "get [device-info|software-version|dmx-start-address|identify|supported-parameters]",
		Short: "Issue a GET request against one responder",
		Args:  cobra.ExactArgs(1),
		RunE:  runGetCmd,
	}
	cmd.Flags().StringVarP(&getUIDFlag, "uid", "u", "", "target UID, MMMM:DDDDDDDD hex")
	_ = cmd.MarkFlagRequired("uid")
	RootCmd.AddCommand(cmd)
}

func parseUIDFlag(s string) (protocol.UID, error) {
	var mfr uint16
	var dev uint32
	n, err := fmt.Sscanf(s, "%04X:%08X", &mfr, &dev)
	if err != nil || n != 2 {
		return protocol.UID{}, fmt.Errorf("expected MMMM:DDDDDDDD hex, got %q", s)
	}
	return protocol.UID{ManufacturerID: mfr, DeviceID: dev}, nil
}

func runGetCmd(_ *cobra.Command, args []string) error {
	ConfigureVerbosity()

	profile, err := loadProfile()
	if err != nil {
		return err
	}
	ctrl, port, err := openController(profile)
	if err != nil {
		return err
	}
	defer port.Close()

	uid, err := parseUIDFlag(getUIDFlag)
	if err != nil {
		return err
	}

	switch args[0] {
	case "device-info":
		info, err := ctrl.GetDeviceInfo(uid)
		if err != nil {
			return err
		}
		log.Infof("device_model_id=%d product_category=0x%04X software_version_id=%d footprint=%d start_address=%+v",
			info.DeviceModelID, info.ProductCategory, info.SoftwareVersionID, info.DMXFootprint, info.DMXStartAddress)
	case "software-version":
		label, err := ctrl.GetSoftwareVersionLabel(uid)
		if err != nil {
			return err
		}
		log.Infof("software_version_label=%q", label)
	case "dmx-start-address":
		addr, err := ctrl.GetDMXStartAddress(uid)
		if err != nil {
			return err
		}
		log.Infof("dmx_start_address=%+v", addr)
	case "identify":
		on, err := ctrl.GetIdentifyDevice(uid)
		if err != nil {
			return err
		}
		log.Infof("identify=%v", on)
	case "supported-parameters":
		pids, more, err := ctrl.GetSupportedParameters(uid)
		if err != nil {
			return err
		}
		log.Infof("supported_parameters=%v more=%v", pids, more)
	default:
		return fmt.Errorf("unknown get target %q", args[0])
	}
	return nil
}
