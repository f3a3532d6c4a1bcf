// SPDX-License-Identifier: MPL-2.0

package program

import (
	"slices"
	"strings"
	"testing"
)

const sample = `000100 IDENTIFICATION DIVISION.
000200 PROGRAM-ID. CUSTPGM.
000300 DATA DIVISION.
000400 WORKING-STORAGE SECTION.
000500     COPY CUSTREC.
000600*    COPY COMMENTED.
000700/    COPY PAGED.
000800     COPY 'acctrec'.
000900     01 WS-X PIC X.  COPY "ORDREC".
001000     copy custrec.
001100 PROCEDURE DIVISION.                                              COPY IDAREA
`

func TestScan(t *testing.T) {
	t.Parallel()

	stmts, err := Scan(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []CopyStatement{
		{Name: "CUSTREC", Line: 5, Column: 12},
		{Name: "ACCTREC", Line: 8, Column: 12},
		{Name: "ORDREC", Line: 9, Column: 28},
		{Name: "CUSTREC", Line: 10, Column: 12},
	}
	if !slices.Equal(stmts, want) {
		t.Errorf("Scan() =\n%v\nwant\n%v", stmts, want)
	}
}

func TestScan_Edges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"short lines", "1\n12345\n", nil},
		{"copy at line start of code area", "000100 COPY A1.\n", []string{"A1"}},
		{"name with hyphen", "000100     COPY CUST-REC.\n", []string{"CUST-REC"}},
		{"replacing clause", "000100     COPY CUSTREC REPLACING ==X== BY ==Y==.\n", []string{"CUSTREC"}},
		{"of library", "000100     COPY CUSTREC OF SYSLIB.\n", []string{"CUSTREC"}},
		{"copybook is not copy", "000100     MOVE COPYBOOK TO X.\n", nil},
		{"two on one line", "000100     COPY A. COPY B.\n", []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stmts, err := Scan(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			var got []string
			for _, s := range stmts {
				got = append(got, s.Name)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("names = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	stmts := []CopyStatement{{Name: "B"}, {Name: "A"}, {Name: "B"}, {Name: "C"}}
	if got := Names(stmts); !slices.Equal(got, []string{"B", "A", "C"}) {
		t.Errorf("Names() = %v", got)
	}
}
