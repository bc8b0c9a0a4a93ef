package main

import (
	cmd "github.com/rohmanhakim/cricket-api/internal/cli"
)

func main() {
	cmd.Execute()
}
