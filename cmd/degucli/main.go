package main

import (
	"github.com/robotalks/degu.go/pkg/cli/sh"

	_ "github.com/robotalks/degu.go/pkg/cli/cmds/degu"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
