// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigInvalidId
	DocumentMissingId
	DocumentNotTextId
	CodePathMissingId
	RootNotDirectoryId
	SectionNotFoundId
	DriftDetectedId
	WatchFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // project documentation about this issue type
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown using the given glamour
// style ("" selects the default style).
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
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

specdrift reads ` + "`specdrift.cue`" + ` from the project root. The file exists but could
not be parsed or does not match the schema.

## Things you can try:
- Compare your file with the defaults:
~~~
$ specdrift config show
~~~
- Regular expressions are easiest to write as CUE raw strings: ` + "`#\"###\\s+3\\.3\"#`" + `
- Remove the file to fall back to the built-in layout`,
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Configuration is inconsistent!

The file parsed, but some values refer to things that do not exist.

## Common causes:
- A category's ` + "`spec.document`" + ` names a document missing from ` + "`documents`" + `
- A section anchor or pattern is not a valid regular expression
- A category sets both ` + "`spec.sections`" + ` and ` + "`spec.pattern`" + `, or neither`,
	}

	documentMissingIssue = &Issue{
		id: DocumentMissingId,
		mdMsg: `
# Spec document not found!

Every configured document is read before any check runs, so one missing file
stops the whole drift check.

## Things you can try:
- Check the ` + "`documents`" + ` paths in ` + "`specdrift.cue`" + ` (they are relative to the project root)
- Point the check at a different project:
~~~
$ specdrift drift --root /path/to/project
~~~`,
	}

	documentNotTextIssue = &Issue{
		id: DocumentNotTextId,
		mdMsg: `
# Spec document is not text!

The document is neither UTF-8 nor UTF-16 with a byte order mark.

## Things you can try:
- Re-save the file as UTF-8
- Make sure the configured path points at the markdown file, not a binary export`,
	}

	codePathMissingIssue = &Issue{
		id: CodePathMissingId,
		mdMsg: `
# Code path not found!

A category counts names in a directory or file that does not exist.

## Things you can try:
- Check the category's ` + "`code.path`" + ` in ` + "`specdrift.cue`" + `
- Remove the category if the component type no longer exists`,
	}

	rootNotDirectoryIssue = &Issue{
		id: RootNotDirectoryId,
		mdMsg: `
# Project root is not a directory!

Discovery needs an existing directory to classify.

## Things you can try:
~~~
$ specdrift discover .
~~~`,
	}

	sectionNotFoundIssue = &Issue{
		id: SectionNotFoundId,
		mdMsg: `
# Table section not found!

No line in the document matched the section's start pattern, so its rows were
counted as zero. This usually means a heading was renamed or renumbered.

## Things you can try:
- List the document's headings:
~~~
$ specdrift headings docs/specification/01_overview.md
~~~
- Count the section's rows directly:
~~~
$ specdrift rows docs/specification/01_overview.md --start '###\s+3\.3' --stop '###\s+3\.4'
~~~`,
	}

	driftDetectedIssue = &Issue{
		id: DriftDetectedId,
		mdMsg: `
# Spec drift detected!

The code and the spec documents disagree. specdrift never edits documents;
update them by hand and refresh the ` + "`Last verified: YYYY-MM-DD`" + ` line.

## Reading the report:
- ` + "`[WARN] X: a (code) != b (spec)`" + ` means a table or list is out of date
- ` + "`-> not listed in ...`" + ` names a component the documents never mention
- A stale date means nobody has confirmed the document recently`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# File watcher stopped!

The operating system refused to watch more files.

## Things you can try:
- Raise the inotify limit (Linux):
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Run ` + "`specdrift drift`" + ` without ` + "`--watch`",
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#platform-specific-notes"},
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id(): configLoadFailedIssue,
		configInvalidIssue.Id():    configInvalidIssue,
		documentMissingIssue.Id():  documentMissingIssue,
		documentNotTextIssue.Id():  documentNotTextIssue,
		codePathMissingIssue.Id():  codePathMissingIssue,
		rootNotDirectoryIssue.Id(): rootNotDirectoryIssue,
		sectionNotFoundIssue.Id():  sectionNotFoundIssue,
		driftDetectedIssue.Id():    driftDetectedIssue,
		watchFailedIssue.Id():      watchFailedIssue,
	}
)

// Values returns every catalog issue ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
