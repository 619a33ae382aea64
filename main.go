// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/specdrift/specdrift/cmd/specdrift"

func main() {
	cmd.Execute()
}
