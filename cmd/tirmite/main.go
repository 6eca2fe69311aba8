// cmd/tirmite/main.go
package main

import (
	"tirmite/internal/app"
	"tirmite/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
