package main

import "github.com/EmerJK/emertxthn/internal/cli"

func main() {
	cli.Execute()
}
