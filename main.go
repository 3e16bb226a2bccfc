package main

import "github.com/DevExpGBB/aml-lab-setup/cmd"

func main() {
	cmd.Execute()
}
