// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/cobdeps/cobdeps/cmd/cobdeps"

func main() {
	cmd.Execute()
}
