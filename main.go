package main

import (
	"github.com/recordkit/recstamp/cmd"
)

func main() {
	cmd.Execute()
}
