// @title Event Management API
// @version 1.0
// @description Manage events, register users and export event summaries as PDF.
// @BasePath /
package main

import "eventmanagement/cmd/server/cmd"

func main() {
	cmd.Execute()
}
