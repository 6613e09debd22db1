package main

import "github.com/coderelay-dev/coderelay/internal/cli"

func main() {
	cli.Execute()
}
