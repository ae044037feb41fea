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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/go-rdm/protocol"
)

var (
	muteUIDFlag   string
	unmuteUIDFlag string
)

func init() {
	mute := &cobra.Command{
		Use:   "mute",
		Short: "Send DISC_MUTE to one responder",
		RunE:  runMuteCmd,
	}
	mute.Flags().StringVarP(&muteUIDFlag, "uid", "u", "", "target UID, MMMM:DDDDDDDD hex")
	_ = mute.MarkFlagRequired("uid")
	RootCmd.AddCommand(mute)

	unmute := &cobra.Command{
		Use:   "unmute",
		Short: "Send DISC_UN_MUTE, or broadcast to un-mute every responder",
		RunE:  runUnmuteCmd,
	}
	unmute.Flags().StringVarP(&unmuteUIDFlag, "uid", "u", "", "target UID, MMMM:DDDDDDDD hex; omit to broadcast")
	RootCmd.AddCommand(unmute)
}

func runMuteCmd(_ *cobra.Command, _ []string) error {
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

	uid, err := parseUIDFlag(muteUIDFlag)
	if err != nil {
		return err
	}
	resp, err := ctrl.DiscMute(uid)
	if err != nil {
		return err
	}
	log.Infof("muted: %+v", resp)
	return nil
}

func runUnmuteCmd(_ *cobra.Command, _ []string) error {
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

	var uid = protocol.BroadcastUID
	if unmuteUIDFlag != "" {
		uid, err = parseUIDFlag(unmuteUIDFlag)
		if err != nil {
			return err
		}
	}
	resp, err := ctrl.DiscUnMute(uid)
	if err != nil {
		return err
	}
	log.Infof("unmuted: %+v", resp)
	return nil
}
