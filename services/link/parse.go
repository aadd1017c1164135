// Package link is the supervisory link to the remote server: a periodic
// status push and a line-based command channel.
package link

import (
	"strings"

	"habitat-go/errcode"
	"habitat-go/types"
	"habitat-go/x/strconvx"
)

// ParseCommand parses "<moduleId>,<commandCode>,<parameter>" in decimal.
// Fields may carry surrounding spaces. Module and code are 0..255, the
// parameter is a signed 32-bit integer. Anything else is malformed.
func ParseCommand(line []byte) (types.Command, error) {
	fields := strings.Split(strings.TrimSpace(string(line)), ",")
	if len(fields) != 3 {
		return types.Command{}, errcode.MalformedLine
	}
	mod, err := parseField(fields[0], 0, 255)
	if err != nil {
		return types.Command{}, err
	}
	code, err := parseField(fields[1], 0, 255)
	if err != nil {
		return types.Command{}, err
	}
	param, err := strconvx.ParseInt(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return types.Command{}, errcode.MalformedLine
	}
	return types.Command{
		Target: types.ModuleID(mod),
		Code:   types.CommandCode(code),
		Param:  int32(param),
	}, nil
}

func parseField(s string, lo, hi int64) (int64, error) {
	v, err := strconvx.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil || v < lo || v > hi {
		return 0, errcode.MalformedLine
	}
	return v, nil
}
