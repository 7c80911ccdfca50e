package main

import "peopledir/cmd/peopledir-cli/cmd"

func main() {
	cmd.Execute()
}
