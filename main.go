package main

import "github.com/shelternet/apiserver/cmd"

func main() {
	cmd.Execute()
}
