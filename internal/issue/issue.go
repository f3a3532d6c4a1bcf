// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog issue.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ProfilesInvalidId
	NoProfileId
	NoDatasetPathsId
	NoWorkspaceId
	ListingFailedId
	FetchFailedId
	HostKeyUnknownId
	PartialResolutionId
	ProgramNotFoundId
)

type (
	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a reference URL shown under "See also".
	HttpLink string

	// Issue is a catalog entry explaining a failure and how to recover.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

// Id returns the catalog identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue for the terminal with the given glamour style
// ("dark", "light", "notty", or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# The configuration could not be loaded

cobdeps reads ` + "`config.cue`" + ` from the platform config directory, then from the workspace.

## Things you can try
- Print the effective configuration:
~~~
$ cobdeps config show
~~~
- Create a fresh default file and compare:
~~~
$ cobdeps config init
~~~
- Environment variables such as ` + "`COBDEPS_CACHE_ROOT`" + ` override file values.`,
	}

	profilesInvalidIssue = &Issue{
		id: ProfilesInvalidId,
		mdMsg: `
# The connection profiles file is invalid

Each ` + "`[[profile]]`" + ` table needs a unique ` + "`name`" + `, a ` + "`type`" + ` (zosmf, ssh, local, s3)
and the fields that type requires.

## Example
~~~toml
[[profile]]
name = "dev"
type = "zosmf"
host = "mvs.example.com"
port = 443
user = "ibmuser"
secure = true
default = true
~~~`,
	}

	noProfileIssue = &Issue{
		id: NoProfileId,
		mdMsg: `
# No connection profile is configured

Copybooks are downloaded through a connection profile. None was found.

## Things you can try
- Add a profile:
~~~
$ cobdeps profiles add
~~~
- Point ` + "`profiles_file`" + ` in the configuration at an existing profiles file.`,
	}

	noDatasetPathsIssue = &Issue{
		id: NoDatasetPathsId,
		mdMsg: `
# No dataset paths are configured

cobdeps searches the configured datasets in order. The list is empty.

## Things you can try
- Add the search list to ` + "`config.cue`" + `:
~~~cue
dataset_paths: ["HLQ.COPYLIB", "SHARED.COPYLIB"]
~~~
- Or set it for one run:
~~~
$ COBDEPS_DATASET_PATHS=HLQ.COPYLIB cobdeps resolve prog.cbl
~~~`,
	}

	noWorkspaceIssue = &Issue{
		id: NoWorkspaceId,
		mdMsg: `
# There is nowhere to download copybooks to

Downloads go to ` + "`cache_root`" + ` or, when it is empty, the workspace folder.

## Things you can try
- Pass ` + "`--workspace <dir>`" + ` or run from the project folder.
- Set an absolute ` + "`cache_root`" + ` in the configuration.`,
	}

	listingFailedIssue = &Issue{
		id: ListingFailedId,
		mdMsg: `
# A dataset could not be listed

The dataset was skipped and the search continued with the next one.

## Things you can try
- Check that the dataset exists and your user may read it.
- Verify host, port and credentials of the profile:
~~~
$ cobdeps profiles list
~~~`,
	}

	fetchFailedIssue = &Issue{
		id: FetchFailedId,
		mdMsg: `
# A copybook could not be downloaded

The member was listed but reading its content failed. The name stays unresolved.

## Things you can try
- Run again. Copybooks already downloaded are not fetched twice.
- Increase ` + "`zosmf.max_retries`" + ` or ` + "`zosmf.timeout`" + ` for slow hosts.`,
	}

	hostKeyUnknownIssue = &Issue{
		id: HostKeyUnknownId,
		mdMsg: `
# The SSH host key is not trusted

The dataset host presented a key that is not in your known_hosts file.

## Things you can try
- Connect once with ` + "`ssh`" + ` to record the key.
- For throwaway test hosts set ` + "`insecure_skip_host_key = true`" + ` on the profile.`,
	}

	partialResolutionIssue = &Issue{
		id: PartialResolutionId,
		mdMsg: `
# Some copybooks were not found

No configured dataset contains the names listed above.

## Things you can try
- Add the dataset that holds them to ` + "`dataset_paths`" + `.
- Check the COPY statements for typos. Names are matched exactly.`,
	}

	programNotFoundIssue = &Issue{
		id: ProgramNotFoundId,
		mdMsg: `
# The program source could not be read

## Things you can try
- Check the path. Relative paths are resolved against the current directory.
- Pass copybook names directly with ` + "`--name`" + `.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		profilesInvalidIssue.Id():   profilesInvalidIssue,
		noProfileIssue.Id():         noProfileIssue,
		noDatasetPathsIssue.Id():    noDatasetPathsIssue,
		noWorkspaceIssue.Id():       noWorkspaceIssue,
		listingFailedIssue.Id():     listingFailedIssue,
		fetchFailedIssue.Id():       fetchFailedIssue,
		hostKeyUnknownIssue.Id():    hostKeyUnknownIssue,
		partialResolutionIssue.Id(): partialResolutionIssue,
		programNotFoundIssue.Id():   programNotFoundIssue,
	}
)

// Values returns every catalog issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
