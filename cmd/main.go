package main

import (
	"os"

	"github.com/mehmetcc/libdesk/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
