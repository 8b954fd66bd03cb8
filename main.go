package main

import "stillreel/cli"

func main() {
	cli.Execute()
}
