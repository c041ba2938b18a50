package main

import "jfinder/internal/cli"

func main() {
	cli.Execute()
}
