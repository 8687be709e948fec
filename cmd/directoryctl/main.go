// cmd/directoryctl/main.go
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newApp(openEnvironment).Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("directoryctl failed")
	}
}
