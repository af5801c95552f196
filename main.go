package main

import "github.com/argonsync/argon/cmd"

func main() {
	cmd.Execute()
}
