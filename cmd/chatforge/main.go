package main

import "github.com/chatforge/chatforge/cmd/chatforge/cmd"

func main() {
	cmd.Execute()
}
