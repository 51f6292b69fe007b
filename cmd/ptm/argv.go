package main

import (
	"encoding/json"
	"strings"
)

// argvDict mirrors the reference implementation's ArgvDict: the flag-style
// tail of the command line, made available to the build file as its argv
// object. A flag consumes the next token as its value unless that token is
// itself a flag, in which case the flag's value is boolean true.
type argvDict map[string]interface{}

func parseArgv(args []string) argvDict {
	d := argvDict{}
	for i := 0; i < len(args); {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			i++
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			d[arg] = args[i+1]
			i += 2
		} else {
			d[arg] = true
			i++
		}
	}
	return d
}

// env returns the "PTM_ARGV_JSON=..." assignment carrying d across the
// host-interpreter process boundary.
func (d argvDict) env() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return "PTM_ARGV_JSON=" + string(b), nil
}
