package main

import "github.com/ariebrainware/clinic-admin/cmd"

func main() {
	cmd.Execute()
}
