package retitle

// Outcome classifies what happened to a note during a sync.
type Outcome int

const (
	// Renamed means the note was moved to its title-derived name.
	Renamed Outcome = iota
	// WouldRename is Renamed in dry-run mode.
	WouldRename
	// AlreadyMatches means the filename is already in sync.
	AlreadyMatches
	// NoHeading means the note has no H1.
	NoHeading
	// EmptyFilename means the H1 has no filename-safe content.
	EmptyFilename
	// Collision means another note already uses the target name.
	Collision
	// OptedOut means the note's frontmatter disables syncing.
	OptedOut
)

// Outcomes lists every outcome in declaration order.
func Outcomes() []Outcome {
	return []Outcome{Renamed, WouldRename, AlreadyMatches, NoHeading, EmptyFilename, Collision, OptedOut}
}

func (o Outcome) String() string {
	switch o {
	case Renamed:
		return "renamed"
	case WouldRename:
		return "would rename"
	case AlreadyMatches:
		return "in sync"
	case NoHeading:
		return "no heading"
	case EmptyFilename:
		return "empty filename"
	case Collision:
		return "collision"
	case OptedOut:
		return "opted out"
	}
	return "unknown"
}

// Result describes one note's sync.
type Result struct {
	Path     string // current vault-relative path
	NewPath  string // target path, set when a target could be computed
	Heading  string
	Filename string
	Outcome  Outcome
	Links    []string // notes whose wiki links were rewritten
}

// Message renders the result the way it is reported to the user.
func (r Result) Message() string {
	switch r.Outcome {
	case Renamed:
		return `Renamed to "` + baseName(r.NewPath) + `"`
	case WouldRename:
		return `Would rename to "` + baseName(r.NewPath) + `"`
	case AlreadyMatches:
		return "Filename already matches title"
	case NoHeading:
		return "No H1 header found in the file"
	case EmptyFilename:
		return "Title converts to empty filename"
	case Collision:
		return `Cannot rename: "` + baseName(r.NewPath) + `" already exists`
	case OptedOut:
		return "Title sync disabled in frontmatter"
	}
	return r.Outcome.String()
}
