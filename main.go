package main

import "github.com/harou24/cf-cli/cmd"

func main() {
	cmd.Execute()
}
