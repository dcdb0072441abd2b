package main

import (
	"os"

	"github.com/nimburion/ycsb-ravendb/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
