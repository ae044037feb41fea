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
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/go-rdm/protocol"
)

var setUIDFlag string

func init() {
	cmd := &cobra.Command{
		Use:   "set [dmx-start-address|identify] value",
		Short: "Issue a SET request against one responder",
		Args:  cobra.ExactArgs(2),
		RunE:  runSetCmd,
	}
	cmd.Flags().StringVarP(&setUIDFlag, "uid", "u", "", "target UID, MMMM:DDDDDDDD hex")
	_ = cmd.MarkFlagRequired("uid")
	RootCmd.AddCommand(cmd)
}

func runSetCmd(_ *cobra.Command, args []string) error {
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

	uid, err := parseUIDFlag(setUIDFlag)
	if err != nil {
		return err
	}

	switch args[0] {
	case "dmx-start-address":
		v, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", args[1], err)
		}
		addr, err := protocol.NewDmxStartAddress(uint16(v))
		if err != nil {
			return err
		}
		if err := ctrl.SetDMXStartAddress(uid, addr); err != nil {
			return err
		}
		log.Infof("dmx_start_address set to %d", v)
	case "identify":
		on, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid bool %q: %w", args[1], err)
		}
		if err := ctrl.SetIdentifyDevice(uid, on); err != nil {
			return err
		}
		log.Infof("identify set to %v", on)
	default:
		return fmt.Errorf("unknown set target %q", args[0])
	}
	return nil
}
