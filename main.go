// SPDX-License-Identifier: MPL-2.0

// Command taskwave runs tasks declared in a CUE file in dependency order.
package main

import "github.com/taskwave/taskwave/cmd/taskwave"

func main() {
	cmd.Execute()
}
