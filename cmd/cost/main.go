package main

import "github.com/utcs-scea/cost/cmd/cost/commands"

func main() {
	commands.Execute()
}
