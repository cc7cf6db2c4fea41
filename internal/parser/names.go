package parser

import "strings"

// LocalName strips a namespace qualifier from a tag or a QName-valued
// attribute: first a brace-delimited URI ("{uri}local"), otherwise a
// colon-delimited prefix ("xs:string").
func LocalName(name string) string {
	if i := strings.IndexByte(name, '}'); i >= 0 {
		return name[i+1:]
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
