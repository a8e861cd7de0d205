package engine

import "errors"

var errNoAtoms = errors.New("query names no field:value atom")
