package oxml

import "regexp"

// stripNsDeclsRegexp matches an xmlns or xmlns:prefix attribute and its
// quoted value, in either quoting style.
var stripNsDeclsRegexp = regexp.MustCompile(`\s+xmlns(:[A-Za-z0-9_]+)?="[^"]*"|\s+xmlns(:[A-Za-z0-9_]+)?='[^']*'`)
