// SPDX-License-Identifier: MPL-2.0

package main

import "extpack-cli/cmd/extpack"

func main() {
	cmd.Execute()
}
