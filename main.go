package main

import "parcel-shipping-service/commands"

func main() {
	commands.Execute()
}
