package main

import "github.com/theirongolddev/acumon/cmd"

func main() {
	cmd.Execute()
}
