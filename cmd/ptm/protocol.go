package main

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/Phantom1003/ptm/core"
)

// depRef names one side of a declared dependency edge. Kind disambiguates
// a bare string the host shim can't tell apart from a file path on its
// own: "file" for a filesystem artifact (Id is absolute), "task" for a
// symbolic name.
type depRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func (d depRef) toTarget() (core.Target, error) {
	if d.Kind == "file" {
		return core.NewFileTarget(d.ID)
	}
	return core.NewTaskTarget(d.ID), nil
}

// registration is one line of the NDJSON protocol a host-interpreter run
// emits to describe a target it declared. This is the registration half of
// the boundary spec §6 calls out as an external interface: ptm's own
// process never parses or executes the host scripting language, it only
// reads back what a run of it declared.
type registration struct {
	Target   depRef   `json:"target"`
	Deps     []depRef `json:"deps"`
	External bool     `json:"external"`
	Shell    string   `json:"shell"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
}

// readRegistrations reads the NDJSON file a host-interpreter run wrote at
// the path named by PTM_REGISTRY_FILE. A missing file means the run
// declared nothing, which is not itself an error.
func readRegistrations(path string) ([]registration, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading registrations from %s", path)
	}
	defer f.Close()

	var out []registration
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r registration
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, errors.Wrapf(err, "parsing registration line %q", line)
		}
		out = append(out, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading registrations from %s", path)
	}
	return out, nil
}
