package main

import "github.com/Laisky/icebreaker/cmd"

func main() {
	cmd.Execute()
}
