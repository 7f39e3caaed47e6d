package main

import "github.com/luthersystems/skeem/cmd"

func main() {
	cmd.Execute()
}
