package main

import "github.com/ShreyasReddy007/Digital-AfterLife/cmd/server/cmd"

func main() {
	cmd.Execute()
}
