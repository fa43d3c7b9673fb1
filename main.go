package main

import "cafefinder/cmd"

func main() {
	cmd.Execute()
}
