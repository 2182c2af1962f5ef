// Command aqumen builds curves from market snapshots and prices, risks and
// shocks swap and bond positions against them.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if terr := a.teardown(); err == nil {
		err = terr
	}
	if err != nil {
		writeError(stdout, err)
		return 1
	}
	return 0
}

type errorOutput struct {
	Error string `json:"error"`
}

func writeError(w io.Writer, err error) {
	b, _ := json.Marshal(errorOutput{Error: err.Error()})
	fmt.Fprintln(w, string(b))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
