package main

import "github.com/charliewiggs/den/internal/cli"

func main() {
	cli.Execute()
}
