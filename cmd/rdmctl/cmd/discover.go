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
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/go-rdm/protocol"
)

func init() {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run full binary-search discovery and list every responding UID",
		RunE:  runDiscoverCmd,
	}
	RootCmd.AddCommand(cmd)
}

func runDiscoverCmd(_ *cobra.Command, _ []string) error {
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

	if _, err := ctrl.DiscUnMute(protocol.BroadcastUID); err != nil {
		log.Debugf("disc_un_mute broadcast: %v", err)
	}

	uids, err := ctrl.Discover()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Println("discovered devices:")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"uid", "manufacturer", "device"})
	for _, u := range uids {
		table.Append([]string{u.String(), color.New(color.FgCyan).Sprintf("%04X", u.ManufacturerID), color.New(color.FgGreen).Sprintf("%08X", u.DeviceID)})
	}
	table.Render()

	log.Infof("discovery complete: %d device(s) found", len(uids))
	return nil
}
