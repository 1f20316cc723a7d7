package main

import (
	"tcrb-alerts/internal/cli"
)

func main() {
	cli.Execute()
}
