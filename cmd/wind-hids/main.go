package main

import (
	"github.com/sandialabs/wind-hids/internal/cli"
)

func main() {
	cli.Execute()
}
