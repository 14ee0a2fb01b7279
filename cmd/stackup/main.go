package main

import (
	"os"

	"github.com/schmitthub/stackup/internal/stackup"
)

func main() {
	os.Exit(stackup.Main())
}
