package main

import (
	"github.com/rustyeddy/wheel/internal/cli"
)

func main() {
	cli.Execute()
}
