package main

import (
	"cutroom/cmd"
)

func main() {
	cmd.Execute()
}
