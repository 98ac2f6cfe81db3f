package svgdoc

import "errors"

// ErrParse is returned when the input text cannot be parsed as SVG at all.
var ErrParse = errors.New("svgdoc: input is not parseable SVG")

// ErrStructure is returned when the input parses but has no <svg> root element.
var ErrStructure = errors.New("svgdoc: document has no <svg> root")
