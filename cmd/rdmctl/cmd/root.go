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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/go-rdm/config"
	"github.com/facebook/go-rdm/controller"
	"github.com/facebook/go-rdm/driver"
)

// RootCmd is rdmctl's entry point, exported so it can be extended without
// touching the subcommands below.
var RootCmd = &cobra.Command{
	Use:   "rdmctl",
	Short: "Swiss Army Knife for DMX512/RDM",
}

var (
	rootVerboseFlag bool
	rootConfigFlag  string
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringVarP(&rootConfigFlag, "config", "c", "", "path to rdmctl YAML profile")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Must be
// called by any subcommand that wants -v respected.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// loadProfile reads the profile named by --config, or the defaults if unset.
func loadProfile() (*config.Profile, error) {
	if rootConfigFlag == "" {
		return config.DefaultProfile(), nil
	}
	return config.Load(rootConfigFlag)
}

// openController opens the serial port named by the profile and returns a
// ready-to-use Controller.
func openController(p *config.Profile) (*controller.Controller, *driver.Serial, error) {
	uid, err := p.ParsedControllerUID()
	if err != nil {
		return nil, nil, err
	}
	port, err := driver.Open(p.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", p.Port, err)
	}
	return controller.New(uid, port), port, nil
}

// Execute is rdmctl's main entry point.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
