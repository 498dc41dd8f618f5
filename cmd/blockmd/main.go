package main

import "github.com/dgallion1/blockmd/internal/cli"

func main() {
	cli.Execute()
}
