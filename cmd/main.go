package main

import (
	"github.com/corray333/backend-labs/ordering/internal/app"
	"github.com/corray333/backend-labs/ordering/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
