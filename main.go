package main

import "github.com/unichat-io/unichat/cmd"

func main() {
	cmd.Execute()
}
