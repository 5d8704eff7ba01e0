package main

import (
	"os"

	"github.com/divyanshu-1/RoadX/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
