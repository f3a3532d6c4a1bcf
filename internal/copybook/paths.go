// SPDX-License-Identifier: MPL-2.0

package copybook

import "path/filepath"

// Namespace segments placed between the root folder and the profile directory.
// Other tools index downloaded copybooks by this layout, so it must not change.
const (
	NamespaceDir = "zowe"
	CopybooksDir = "copybooks"
)

// CopybookPath returns the local path of a downloaded copybook:
//
//	<rootFolder>/zowe/copybooks/<profileName>/<datasetName>/<copybookName>
func CopybookPath(profileName, datasetName, copybookName, rootFolder string) string {
	return filepath.Join(DatasetPath(profileName, datasetName, rootFolder), copybookName)
}

// DatasetPath returns the local directory holding copybooks downloaded from
// one dataset under one profile.
func DatasetPath(profileName, datasetName, rootFolder string) string {
	return filepath.Join(rootFolder, NamespaceDir, CopybooksDir, profileName, datasetName)
}
