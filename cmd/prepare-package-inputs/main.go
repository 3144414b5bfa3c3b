package main

import "github.com/oshokin/package-inputs/cmd/prepare-package-inputs/cmd"

func main() {
	cmd.Execute()
}
