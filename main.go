package main

import "github.com/kamal-hamza/imgdrop/cmd"

func main() {
	cmd.Execute()
}
