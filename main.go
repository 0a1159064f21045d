package main

import "github.com/aura-baza/aura-hr/cmd"

func main() {
	cmd.Execute()
}
