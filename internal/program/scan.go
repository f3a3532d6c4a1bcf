// SPDX-License-Identifier: MPL-2.0

package program

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	indicatorColumn = 7
	codeStart       = 8
	codeEnd         = 72

	maxLineLength = 1024 * 1024
)

// copyPattern matches COPY followed by an unquoted or quoted member name.
var copyPattern = regexp.MustCompile(`(?i)(?:^|[\s.])(COPY)\s+("[^"]+"|'[^']+'|[A-Z0-9#@$-]+)`)

// CopyStatement is one COPY statement found in a program.
type CopyStatement struct {
	// Name is the copybook name, upper cased and unquoted.
	Name string
	// Line is the 1-based source line.
	Line int
	// Column is the 1-based column of the COPY keyword.
	Column int
}

// Scan returns the COPY statements of a fixed-format COBOL source in order
// of appearance.
func Scan(r io.Reader) ([]CopyStatement, error) {
	var stmts []CopyStatement

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLength)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()
		if isComment(line) {
			continue
		}
		code := codeArea(line)
		for _, m := range copyPattern.FindAllStringSubmatchIndex(code, -1) {
			name := normalizeName(code[m[4]:m[5]])
			if name == "" {
				continue
			}
			stmts = append(stmts, CopyStatement{
				Name:   name,
				Line:   lineNo,
				Column: codeStart + m[2],
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program source: %w", err)
	}
	return stmts, nil
}

// Names returns the distinct copybook names in order of first appearance.
func Names(stmts []CopyStatement) []string {
	seen := make(map[string]struct{}, len(stmts))
	var out []string
	for _, s := range stmts {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		out = append(out, s.Name)
	}
	return out
}

func isComment(line string) bool {
	if len(line) < indicatorColumn {
		return false
	}
	switch line[indicatorColumn-1] {
	case '*', '/':
		return true
	}
	return false
}

func codeArea(line string) string {
	if len(line) < codeStart {
		return ""
	}
	return line[codeStart-1 : min(len(line), codeEnd)]
}

func normalizeName(raw string) string {
	name := strings.Trim(raw, `"'`)
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	return strings.ToUpper(name)
}
