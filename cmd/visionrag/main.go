package main

import "visionrag/internal/cli"

func main() {
	cli.Execute()
}
