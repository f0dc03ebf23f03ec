package main

import "github.com/mvp-joe/astdigest/internal/cli"

func main() {
	cli.Execute()
}
