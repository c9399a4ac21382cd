// Package spec holds the internal typed representation of a loaded,
// validated bintest specification tree ("Value model"). Nothing in
// this package parses YAML directly — that is the job of internal/specyaml,
// a thin collaborator ("surface syntax ... left to thin
// collaborators"). This package is the strict, engine-facing model every
// other component operates on.
package spec

import "time"

// SandboxPolicyKind is the `sandbox_dir` policy.
type SandboxPolicyKind int

const (
	SandboxTemp SandboxPolicyKind = iota
	SandboxLocal
	SandboxPath
)

// SandboxPolicy resolves where a file's sandbox root is created.
type SandboxPolicy struct {
	Kind SandboxPolicyKind
	Path string // only meaningful when Kind == SandboxPath
}

// Suite is the root of a run.
type Suite struct {
	Binary         string // empty if unset; resolved to an absolute path at load time when set
	Timeout        time.Duration
	Env            map[string]string
	InheritEnv     *bool // nil = unset, defer to built-in default (false)
	Serial         bool
	CaptureFSDiff  bool
	SandboxDir     SandboxPolicy
	Setup          []Action
	Teardown       []Action
	Databases      map[string]DatabaseDef
	Files          []*File
}

// File is a single specification document.
type File struct {
	Path string // source path, for diagnostics and the result tree

	Binary        string
	Timeout       *time.Duration
	Env           map[string]string
	InheritEnv    *bool
	Serial        bool
	CaptureFSDiff *bool
	SandboxDir    *SandboxPolicy
	Setup         []Action
	Teardown      []Action
	Databases     map[string]DatabaseDef

	Tests []*Test
}

// Test is either a single implicit step (legacy run/expect) or an ordered,
// non-empty list of Steps.
type Test struct {
	Name     string
	Serial   bool
	SkipIf   []Condition
	Require  []Condition
	Setup    []Action
	Teardown []Action
	Steps    []*Step
}

// Step is one unit of execution within a Test.
type Step struct {
	Name     string
	Setup    []Action
	Run      RunSpec
	Expect   ExpectSpec
	Teardown []Action
}

// RunSpec describes how to launch the process under test.
type RunSpec struct {
	Cmd     string
	Args    []string
	Stdin   []byte
	Timeout *time.Duration
	Env     map[string]string
}

// ExpectSpec is the set of assertions evaluated against a run outcome
//. A nil pointer for any field means "unchecked".
type ExpectSpec struct {
	Exit   *int
	Signal *int
	Stdout *Matcher
	Stderr *Matcher
	Files  []FileAssertion
	Tree   *TreeAssertion
	Sql    []SqlAssertion
}

// MatcherKind tags a Matcher variant.
type MatcherKind int

const (
	MatchEquals MatcherKind = iota
	MatchContains
	MatchRegex
)

// Matcher is a tagged variant: Equals, Contains, or Regex.
type Matcher struct {
	Kind  MatcherKind
	Value string
}

// FileAssertion asserts about a single sandbox-relative path.
type FileAssertion struct {
	Path     string
	Exists   bool
	Contents *Matcher
}

// TreeEntry is one required-present entry of a TreeAssertion.
type TreeEntry struct {
	Path     string
	Contents *Matcher
}

// TreeAssertion snapshots a directory subtree.
type TreeAssertion struct {
	Root     string
	Contains []TreeEntry
	Excludes []string
}

// SqlAssertionKind tags a SqlAssertion variant.
type SqlAssertionKind int

const (
	SqlQuery SqlAssertionKind = iota
	SqlTableExists
	SqlTableNotExists
	SqlRowCount
)

// RowCountOp is the comparison operator for a RowCount assertion.
type RowCountOp int

const (
	RowCountEquals RowCountOp = iota
	RowCountGreaterThan
	RowCountLessThan
)

// SqlAssertion is a tagged variant over the four SQL assertion shapes:
// Query (with its returns/returns_empty/returns_null/returns_one_row modes
// folded into the Query fields below), TableExists, TableNotExists, and
// RowCount.
type SqlAssertion struct {
	Kind     SqlAssertionKind
	Database string

	// Kind == SqlQuery
	Query           string
	Returns         *Matcher // nil + !ReturnsEmpty/Null/OneRow => unchecked beyond "no error"
	ReturnsEmpty    bool
	ReturnsNull     bool
	ReturnsOneRow   bool

	// Kind == SqlTableExists / SqlTableNotExists
	Table string

	// Kind == SqlRowCount
	RowCountTable string
	RowCountOp    RowCountOp
	RowCountValue int64
}

// ActionKind tags an Action variant.
type ActionKind int

const (
	ActionWriteFile ActionKind = iota
	ActionCreateDir
	ActionCopyFile
	ActionCopyDir
	ActionRemoveFile
	ActionRemoveDir
	ActionRun
	ActionSql
	ActionSqlFile
	ActionDbSnapshot
	ActionDbRestore
)

// SqlOnError controls Sql action failure handling.
type SqlOnError int

const (
	SqlOnErrorFail SqlOnError = iota
	SqlOnErrorContinue
)

// Action is a tagged variant used in setup/teardown lists — a tagged
// variant, not a polymorphic class hierarchy.
type Action struct {
	Kind ActionKind

	// ActionWriteFile
	Path     string
	Contents string

	// ActionCreateDir: Path
	// ActionCopyFile / ActionCopyDir
	From string
	To   string

	// ActionRemoveFile / ActionRemoveDir: Path

	// ActionRun
	Run RunSpec

	// ActionSql
	Database   string
	Statements []string
	OnError    SqlOnError

	// ActionSqlFile
	SqlFilePath string

	// ActionDbSnapshot / ActionDbRestore
	SnapshotName string
}

// DatabaseDriver names a supported DatabaseClient backend.
type DatabaseDriver int

const (
	DriverSqlite DatabaseDriver = iota
	DriverPostgres
)

// IsolationMode is the per-database isolation policy.
type IsolationMode int

const (
	IsolationNone IsolationMode = iota
	IsolationPerFile
)

// DatabaseDef names a logical database and how to reach it.
type DatabaseDef struct {
	Name      string
	Driver    DatabaseDriver
	URL       string
	Isolation IsolationMode
}

// ConditionKind tags a Condition variant.
type ConditionKind int

const (
	CondEnv ConditionKind = iota
	CondCmd
	CondSql
)

// SqlPredicate is the comparison applied to a Condition{Sql} query result.
type SqlPredicate int

const (
	SqlPredicateTrue      SqlPredicate = iota // non-empty, first cell not ""/"false"/"null" or a numeric zero
	SqlPredicateEmpty
	SqlPredicateNonEmpty
)

// Condition is a tagged variant for skip_if/require.
type Condition struct {
	Kind ConditionKind

	// CondEnv
	EnvName string

	// CondCmd: a shell-free command, split the same way RunSpec.Cmd+Args is
	Command string
	Args    []string

	// CondSql
	Database  string
	Query     string
	Predicate SqlPredicate
}
