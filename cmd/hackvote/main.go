package main

import "hackvote/cmd/hackvote/cmd"

func main() {
	cmd.Execute()
}
