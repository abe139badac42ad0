package main

import "github.com/oshokin/mod-version/cmd/mod-version/cmd"

func main() {
	cmd.Execute()
}
