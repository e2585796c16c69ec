package main

import "github.com/craftkontrol/memoboard/internal/cli"

func main() {
	cli.Execute()
}
