package main

import "github.com/clawd-xsl/android-remote/cmd"

func main() {
	cmd.Execute()
}
