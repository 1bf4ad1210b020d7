// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"strconv"
	"strings"
)

// Engine command construction, one function per protocol step. Each builder
// takes already-validated identifiers and numeric values and produces the
// exact command text; transports and protocols never concatenate command
// fragments anywhere else.

func realCommand(name string) string {
	return "real(" + name + ");"
}

func isrealCommand(name string) string {
	return "isreal(" + name + ");"
}

func imagCommand(name string) string {
	return "imag(" + name + ");"
}

func sizeCommand(name string) string {
	return "size(" + name + ");"
}

// genvarnameCommand asks the engine for an identifier derived from base that
// collides with nothing currently bound in its namespace.
func genvarnameCommand(base string) string {
	return "genvarname('" + base + "', who);"
}

// reshapeCommand builds the single combining expression of the write
// protocol: reshape the uploaded real part, summed with imagVar * i when
// imagVar is non-empty, into target with the given dimension lengths. The
// combine and reshape happen in one evaluated expression so no intermediate
// state is ever visible under target.
func reshapeCommand(target, realVar, imagVar string, lengths []int) string {
	var b strings.Builder
	b.WriteString(target)
	b.WriteString(" = reshape(")
	b.WriteString(realVar)
	if imagVar != "" {
		b.WriteString(" + ")
		b.WriteString(imagVar)
		b.WriteString(" * i")
	}
	for _, n := range lengths {
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteString(");")
	return b.String()
}

func clearCommand(name string) string {
	return "clear " + name + ";"
}
