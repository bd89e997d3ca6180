package main

import "codecritic/cmd"

func main() {
	cmd.Execute()
}
