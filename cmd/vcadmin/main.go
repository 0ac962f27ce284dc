package main

import "github.com/mcoot/videocollect/internal/cli"

func main() {
	cli.Execute()
}
