package main

import "github.com/inovacc/cookbook/cmd"

func main() {
	cmd.Execute()
}
