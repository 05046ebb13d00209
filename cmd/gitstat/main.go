// main is the entry point of the gitstat CLI.
package main

import (
	"github.com/TordWessman/gitstat/cmd"
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseCaching()
	if err != nil {
		contract.LogFatal("Error executing command", err)
	}
}
