// ABOUTME: Entry point for MicAmp
// ABOUTME: Hands control to the cobra command tree
package main

import "github.com/micamp/micamp-go/cmd"

func main() {
	cmd.Execute()
}
