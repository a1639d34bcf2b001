package main

import (
	"os"

	"github.com/cshum/imgixset/config"
	"github.com/cshum/imgixset/config/awsconfig"
	"github.com/cshum/imgixset/config/gcloudconfig"
)

func main() {
	var server = config.CreateServer(
		os.Args[1:],
		awsconfig.WithAWS,
		gcloudconfig.WithGCloud,
	)
	if server != nil {
		server.Run()
	}
}
