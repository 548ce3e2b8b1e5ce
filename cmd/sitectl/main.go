package main

import "github.com/ewillweb/internal/cli"

func main() {
	cli.Main()
}
