package main

import (
	"github.com/AzielCF/az-digest/cmd"
)

func main() {
	cmd.Execute()
}
