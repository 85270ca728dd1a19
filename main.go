package main

import "cinebox/cmd"

func main() {
	cmd.Execute()
}
