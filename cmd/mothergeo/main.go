package main

import (
	"log"
	"os"

	"github.com/patdaburu/mothergeo/internal/cmd"
)

func main() {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal("failed to determine working directory")
	}

	err = cmd.Run(cmd.Settings{
		WorkingDir: wd,
		Args:       os.Args[1:],
	})

	if err != nil {
		log.Fatal(err.Error())
	}
}
