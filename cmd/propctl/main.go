// Command propctl inspects and modifies a property store.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	cmd := newRootCommand()

	err := cmd.Execute()
	if err != nil {
		logrus.WithError(err).Error("command failed")
	}

	os.Exit(exitCode(err))
}
