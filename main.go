package main

import "medreminder/cmd"

func main() {
	cmd.Execute()
}
