package main

import (
	"os"

	"github.com/arthur-debert/bpack/cmd/bpack"
)

func main() {
	os.Exit(bpack.Execute())
}
