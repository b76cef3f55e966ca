package main

import "github.com/arloliu/bitpack/cmd/bitpack/cmd"

func main() {
	cmd.Execute()
}
