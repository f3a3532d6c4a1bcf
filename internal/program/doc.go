// SPDX-License-Identifier: MPL-2.0

// Package program finds the copybooks a COBOL program depends on by
// scanning its COPY statements.
//
// Sources are read in fixed format: columns 1-6 hold sequence numbers,
// column 7 is the indicator area (an asterisk or slash marks a comment
// line), and columns 73 onward are the identification area. Only columns
// 8-72 are scanned.
package program
