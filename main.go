package main

import "github.com/itsmeyessir/itsmeyessir/cmd"

func main() {
	cmd.Execute()
}
