package event

// Context captures the information required to evaluate the lint workflow's
// triggers and to report a status back on the triggering change.
type Context struct {
	// Name is the event name, e.g. "pull_request" or "push".
	Name string

	// Action is the event subtype for events that support "types" filters.
	// For example "opened", "synchronize", or "closed" for pull requests.
	Action string

	// Ref is the git ref associated with the event, e.g. "refs/heads/main".
	Ref string

	// BaseRef is the base branch for pull request style events.
	BaseRef string

	// HeadRef is the source branch for pull request style events.
	HeadRef string

	// DefaultBranch is the repository default branch, when known.
	DefaultBranch string

	// SHA is the commit the status report attaches to.
	SHA string

	// Repository is the "owner/name" slug of the repository, when known.
	Repository string
}

// Branch returns the branch name for push events, stripped of the
// refs/heads/ prefix, or the empty string for tag pushes.
func (c Context) Branch() string {
	branch, _ := splitRef(c.Ref)
	return branch
}
