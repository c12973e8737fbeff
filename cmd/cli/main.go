package main

import (
	"github.com/forecastlab/pmeval/pkg/cli"
)

func main() {
	cli.Execute()
}
