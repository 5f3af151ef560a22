package main

import "github.com/posfoundry/tablepos/cmd"

func main() {
	cmd.Execute()
}
