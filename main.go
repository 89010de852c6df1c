package main

import "github.com/brewhouse/storefront/cmd"

func main() {
	cmd.Start()
}
