package main

import "ticketera/internal/app"

// @title                       ticketera API
// @version                     1.0
// @description                 Concert ticket checkout with email verification and manual payment review.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	app.Run()
}
