package main

import "github.com/meetmind/meetmind/internal/cmd"

func main() {
	cmd.Execute()
}
