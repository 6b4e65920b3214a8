package main

import "github.com/trainerhub/poketrainer/cmd"

func main() {
	cmd.Execute()
}
