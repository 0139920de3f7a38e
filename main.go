package main

import "github.com/frahmantamala/auth-service/cmd"

func main() {
	cmd.Execute()
}
