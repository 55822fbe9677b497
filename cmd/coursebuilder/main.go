package main

import "github.com/openswoop/coursebuilder/cmd"

func main() {
	cmd.Execute()
}
