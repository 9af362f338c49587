package main

import "github.com/shotframe/shotframe/cmd/shotframe/commands"

func main() {
	commands.Execute()
}
