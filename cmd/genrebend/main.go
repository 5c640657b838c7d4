package main

import (
	"fmt"
	"os"

	"github.com/behruzmistry/genrebendpro/cmd/genrebend/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
