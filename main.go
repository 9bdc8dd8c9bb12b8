package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/coffeeshop/cli/cmd"
	"github.com/coffeeshop/cli/config"
)

func main() {
	l, err := config.LoadLocal()
	if err != nil {
		log.Fatalln(err.Error())
		return
	}
	cmd.L = l
	cmd.ExecuteCLI()
}
