package main

import (
	"os"

	"github.com/solshare/feed-ranker/rankerservice"
)

func main() {
	if err := rankerservice.Run(); err != nil {
		os.Exit(1)
	}
}
