package main

import "github.com/pfrederiksen/motogp-ics/internal/cli"

func main() {
	cli.Execute()
}
