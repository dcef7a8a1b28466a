package main

import "github.com/resume-analyzer/apiserver/cmd"

func main() {
	cmd.Execute()
}
