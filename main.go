package main

import "github.com/zmk-layout/layout/cmd"

func main() {
	cmd.Execute()
}
