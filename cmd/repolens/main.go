package main

import "github.com/mvp-joe/repolens/internal/cli"

func main() {
	cli.Execute()
}
