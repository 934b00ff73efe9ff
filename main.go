package main

import "github.com/theirongolddev/finproj/cmd"

func main() {
	cmd.Execute()
}
