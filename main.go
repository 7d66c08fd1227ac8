package main

import (
	"os"

	"github.com/IndexFi/oracle-order-svc/internal/cli"
)

func main() {
	if !cli.Run(os.Args) {
		os.Exit(1)
	}
}
