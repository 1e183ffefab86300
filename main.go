package main

import "entity-sync/cmd"

func main() {
	cmd.Execute()
}
