// Command crunchbase queries the CrunchBase API from the command line.
//
//	crunchbase --api-key KEY company facebook
//	crunchbase person mark zuckerberg
//	crunchbase search --all "kapor capital"
//	crunchbase --redis-addr localhost:6379 investors facebook
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	app := newApp(os.Stdout)

	if err := app.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
