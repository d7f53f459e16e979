package main

import (
	"fmt"
	"os"

	"github.com/AnyUserName/wallthumb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wallthumb:", err)
		os.Exit(1)
	}
}
