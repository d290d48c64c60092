// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"os"

	"github.com/sshkeep/sshkeep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
