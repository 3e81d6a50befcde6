package main

import (
	"nutrilog/config"
	"nutrilog/routes"
	"nutrilog/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()
	r := routes.SetupRouter()
	r.Run(":8080")
}
