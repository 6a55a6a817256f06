package main

import (
	"os"

	"github.com/scopegate/scopegate/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
