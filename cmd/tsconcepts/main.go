package main

import "github.com/mvp-joe/tsconcepts/internal/cli"

func main() {
	cli.Execute()
}
