// Command retailseed creates the retail schema and loads sample data.
package main

import "github.com/marshallshelly/pebble-retail/cmd/retailseed/commands"

func main() {
	commands.Execute()
}
