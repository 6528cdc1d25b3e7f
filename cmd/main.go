package main

import (
	"github.com/shopmesh/order-svc/internal/app"
	"github.com/shopmesh/order-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
