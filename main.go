package main

import (
	"os"

	"github.com/corpsite/corpsite/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
