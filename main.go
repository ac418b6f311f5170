package main

import "github.com/RyanBlaney/speech-analyzer/cmd"

func main() {
	cmd.Execute()
}
