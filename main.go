package main

import (
	"github.com/pacwrap/pacwrap/cmd/pacwrap"
)

func main() {
	pacwrap.Execute()
}
