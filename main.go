package main

import "github.com/crn4/kr/cmd"

func main() {
	cmd.Execute()
}
