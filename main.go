package main

import "github.com/Rakhulsr/fashion-boutique/app/cmd"

func main() {
	cmd.RunCli()
}
