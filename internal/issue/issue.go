// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	TaskfileNotFoundId Id = iota + 1
	TaskfileParseErrorId
	TaskNotFoundId
	DuplicateTaskId
	UnknownReferenceId
	DependencyCycleId
	InvalidCwdId
	CommandFailedId
	ShellNotFoundId
	ConfigLoadFailedId
	InvalidRuntimeModeId
)

type (
	// Id identifies a catalogue entry.
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a markdown explanation of an error class.
	Issue struct {
		id    Id          // ID used to lookup the issue
		mdMsg MarkdownMsg // Markdown text that will be rendered
		links []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Links() []HttpLink {
	return slices.Clone(i.links)
}

// Render renders the issue with glamour. stylePath is a glamour standard
// style name ("auto", "dark", "light", "notty") or a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.links) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.links {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	taskfileNotFoundIssue = &Issue{
		id: TaskfileNotFoundId,
		mdMsg: `
# No taskfile found!

taskwave reads its tasks from ` + "`taskwave.cue`" + ` in the current directory.

## Things you can try:
- Change to the project directory and retry
- Point at a different file:
~~~
$ taskwave --file path/to/tasks.cue list
~~~

## Example taskfile:
~~~cue
tasks: [
  {name: "build", description: "Build the project", command: "go build ./..."},
  {name: "test", command: "go test ./...", after: ["build"]},
]
~~~`,
	}

	taskfileParseErrorIssue = &Issue{
		id: TaskfileParseErrorId,
		mdMsg: `
# Failed to parse the taskfile!

Your taskfile contains syntax errors or values the schema does not accept.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, commas)
- Unknown field names (tasks are closed structs)
- Task names with spaces or leading punctuation
- ` + "`runtime`" + ` values other than "native" or "virtual"

## Things you can try:
- Check the error message above for the specific line/column
- Run with verbose mode for more details:
~~~
$ taskwave --verbose validate
~~~`,
	}

	taskNotFoundIssue = &Issue{
		id: TaskNotFoundId,
		mdMsg: `
# Task not found!

The task you asked for is not declared in the taskfile.

## Things you can try:
- List the declared tasks:
~~~
$ taskwave list
~~~
- Check for typos in the task name (names are case sensitive)`,
	}

	duplicateTaskIssue = &Issue{
		id: DuplicateTaskId,
		mdMsg: `
# Duplicate task name!

Every task in the taskfile needs a unique name.

## Things you can try:
- Rename or remove one of the tasks sharing the name
- Merge the two definitions into a single task`,
	}

	unknownReferenceIssue = &Issue{
		id: UnknownReferenceId,
		mdMsg: `
# Unknown task in after/before!

A task lists a dependency that is not declared in the taskfile.

## Things you can try:
- Fix the spelling of the referenced name
- Declare the missing task
- Remove the stale entry from ` + "`after`" + ` or ` + "`before`",
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Tasks reach each other through ` + "`after`" + ` and ` + "`before`" + `, so no
order can satisfy them. Nothing was executed.

## Things you can try:
- Follow the reported path and remove one of its edges
- Remember that ` + "`a.before: [\"b\"]`" + ` is the same edge as ` + "`b.after: [\"a\"]`" + `
- Check every task at once:
~~~
$ taskwave validate
~~~`,
	}

	invalidCwdIssue = &Issue{
		id: InvalidCwdId,
		mdMsg: `
# Working directory not usable!

A task's ` + "`cwd`" + ` does not exist or is not a directory.

## Things you can try:
- Relative paths resolve against the taskfile directory
- Create the directory, or add a task that creates it and list it in ` + "`after`",
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# Task command failed!

A command exited with a non-zero status. Tasks that depend on it were
skipped; tasks already running were allowed to finish.

## Things you can try:
- Scroll up to the failing task's output
- Preview the plan without running anything:
~~~
$ taskwave run --dry-run <task>
~~~`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

The native runtime could not find a shell to run task commands.

## Things you can try:
- Install bash or sh, or set ` + "`shell`" + ` in the config file
- Run tasks with the built-in shell interpreter:
~~~
$ taskwave run --runtime virtual <task>
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where the config is read from:
~~~
$ taskwave config path
~~~
- Check TASKWAVE_* environment variables
- Recreate the default file:
~~~
$ taskwave config init
~~~`,
	}

	invalidRuntimeModeIssue = &Issue{
		id: InvalidRuntimeModeId,
		mdMsg: `
# Invalid runtime!

Valid runtimes are:
- **native**: the system shell (bash, sh, or PowerShell on Windows)
- **virtual**: the built-in POSIX shell interpreter`,
		links: []HttpLink{"https://github.com/mvdan/sh"},
	}

	// catalogue keeps Values in Id order.
	catalogue = []*Issue{
		taskfileNotFoundIssue,
		taskfileParseErrorIssue,
		taskNotFoundIssue,
		duplicateTaskIssue,
		unknownReferenceIssue,
		dependencyCycleIssue,
		invalidCwdIssue,
		commandFailedIssue,
		shellNotFoundIssue,
		configLoadFailedIssue,
		invalidRuntimeModeIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	return slices.Clone(catalogue)
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	i := slices.IndexFunc(catalogue, func(is *Issue) bool { return is.id == id })
	if i < 0 {
		return nil
	}
	return catalogue[i]
}
