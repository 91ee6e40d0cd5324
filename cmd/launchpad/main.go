// launchpad is a program launcher: it keeps a library of programs, fetches and
// builds them on request, and streams their output into a console.
package main

import "os"

func main() {
	os.Exit(Execute())
}
