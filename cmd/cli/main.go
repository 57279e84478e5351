package main

import (
	"github.com/clinsight/comorbid/pkg/cli"
)

func main() {
	cli.Execute()
}
