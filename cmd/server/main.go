package main

import (
	"os"

	"omnisearch/gateway/internal/app"
)

// @title           Omnisearch Gateway API
// @version         1.0
// @description     Browser-facing gateway for the Omnisearch document search and chat platform.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	os.Exit(app.Run())
}
