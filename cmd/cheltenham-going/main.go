package main

import "github.com/pfrederiksen/cheltenham-going/internal/cli"

func main() {
	cli.Execute()
}
