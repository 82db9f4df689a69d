package main

import (
	"fmt"
	"os"

	devassistcmder "github.com/papercomputeco/devassist/cmd/devassist"
	"github.com/papercomputeco/devassist/pkg/cliui"
)

func main() {
	cmd := devassistcmder.NewDevassistCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cliui.FailMark, err)
		os.Exit(1)
	}
}
