package main

import "eduplanner/studysync/cmd"

func main() {
	cmd.Execute()
}
