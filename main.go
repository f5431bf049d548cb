package main

import (
	"github.com/vilanovax/wibecur-sub000/internal/cli"
)

func main() {
	cli.Execute()
}
