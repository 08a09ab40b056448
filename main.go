package main

import "github.com/tanpawarit/hitl-purchase-agent/cmd"

func main() {
	cmd.Execute()
}
