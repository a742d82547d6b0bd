package main

import "github.com/notargets/godiffusion/cmd"

func main() {
	cmd.Execute()
}
