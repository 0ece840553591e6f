package parser

import (
	"strings"

	"github.com/cottand/datashape/shapeerr"
)

func newSyntax(src, msg string) error {
	return shapeerr.New(shapeerr.NewMalformedShape{
		Shape:  strings.TrimSpace(src),
		Reason: msg,
	})
}
