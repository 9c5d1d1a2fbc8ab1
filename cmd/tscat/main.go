package main

import (
	"os"

	"horse.fit/tscat/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
