package specyaml

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// Tagged variants (actions, conditions, matchers, SQL assertions) are
// authored as single-key YAML maps, e.g. `write_file: {path, contents}` or
// `cmd: {command, args}`. mapstructure decodes each payload into a typed
// Go struct, pulling typed values out of a loosely-typed
// map[string]interface{} blob.
func decodeInto(payload interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

func singleKey(m map[string]interface{}) (string, interface{}, error) {
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected exactly one key, got %d", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil
}

func decodeActions(raw []map[string]interface{}) ([]bspec.Action, error) {
	var out []bspec.Action
	for i, m := range raw {
		a, err := decodeAction(m)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeAction(m map[string]interface{}) (bspec.Action, error) {
	key, payload, err := singleKey(m)
	if err != nil {
		return bspec.Action{}, err
	}

	switch key {
	case "write_file":
		var p struct {
			Path     string `mapstructure:"path"`
			Contents string `mapstructure:"contents"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionWriteFile, Path: p.Path, Contents: p.Contents}, nil

	case "create_dir":
		path, err := decodePathShorthand(payload)
		if err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionCreateDir, Path: path}, nil

	case "copy_file":
		var p struct {
			From string `mapstructure:"from"`
			To   string `mapstructure:"to"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionCopyFile, From: p.From, To: p.To}, nil

	case "copy_dir":
		var p struct {
			From string `mapstructure:"from"`
			To   string `mapstructure:"to"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionCopyDir, From: p.From, To: p.To}, nil

	case "remove_file":
		path, err := decodePathShorthand(payload)
		if err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionRemoveFile, Path: path}, nil

	case "remove_dir":
		path, err := decodePathShorthand(payload)
		if err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionRemoveDir, Path: path}, nil

	case "run":
		var p rawRunSpec
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		rs, err := p.toRunSpec()
		if err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionRun, Run: rs}, nil

	case "sql":
		var p struct {
			Database   string   `mapstructure:"database"`
			Statements []string `mapstructure:"statements"`
			OnError    string   `mapstructure:"on_error"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		onErr := bspec.SqlOnErrorFail
		if p.OnError == "continue" {
			onErr = bspec.SqlOnErrorContinue
		}
		return bspec.Action{Kind: bspec.ActionSql, Database: p.Database, Statements: p.Statements, OnError: onErr}, nil

	case "sql_file":
		var p struct {
			Database string `mapstructure:"database"`
			Path     string `mapstructure:"path"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionSqlFile, Database: p.Database, SqlFilePath: p.Path}, nil

	case "db_snapshot":
		var p struct {
			Database string `mapstructure:"database"`
			Name     string `mapstructure:"name"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionDbSnapshot, Database: p.Database, SnapshotName: p.Name}, nil

	case "db_restore":
		var p struct {
			Database string `mapstructure:"database"`
			Name     string `mapstructure:"name"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Action{}, err
		}
		return bspec.Action{Kind: bspec.ActionDbRestore, Database: p.Database, SnapshotName: p.Name}, nil

	default:
		return bspec.Action{}, fmt.Errorf("unknown action %q", key)
	}
}

// decodePathShorthand accepts either a bare path string or {path: "..."}.
func decodePathShorthand(payload interface{}) (string, error) {
	if s, ok := payload.(string); ok {
		return s, nil
	}
	var p struct {
		Path string `mapstructure:"path"`
	}
	if err := decodeInto(payload, &p); err != nil {
		return "", err
	}
	return p.Path, nil
}

func decodeConditions(raw []map[string]interface{}) ([]bspec.Condition, error) {
	var out []bspec.Condition
	for i, m := range raw {
		c, err := decodeCondition(m)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeCondition(m map[string]interface{}) (bspec.Condition, error) {
	key, payload, err := singleKey(m)
	if err != nil {
		return bspec.Condition{}, err
	}

	switch key {
	case "env":
		name, ok := payload.(string)
		if !ok {
			return bspec.Condition{}, fmt.Errorf("env: expected a string")
		}
		return bspec.Condition{Kind: bspec.CondEnv, EnvName: name}, nil

	case "cmd":
		if s, ok := payload.(string); ok {
			return bspec.Condition{Kind: bspec.CondCmd, Command: s}, nil
		}
		var p struct {
			Command string   `mapstructure:"command"`
			Args    []string `mapstructure:"args"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Condition{}, err
		}
		return bspec.Condition{Kind: bspec.CondCmd, Command: p.Command, Args: p.Args}, nil

	case "sql":
		var p struct {
			Database  string `mapstructure:"database"`
			Query     string `mapstructure:"query"`
			Predicate string `mapstructure:"predicate"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.Condition{}, err
		}
		pred := bspec.SqlPredicateTrue
		switch p.Predicate {
		case "", "true":
			pred = bspec.SqlPredicateTrue
		case "empty":
			pred = bspec.SqlPredicateEmpty
		case "non_empty":
			pred = bspec.SqlPredicateNonEmpty
		default:
			return bspec.Condition{}, fmt.Errorf("sql: unknown predicate %q", p.Predicate)
		}
		return bspec.Condition{Kind: bspec.CondSql, Database: p.Database, Query: p.Query, Predicate: pred}, nil

	default:
		return bspec.Condition{}, fmt.Errorf("unknown condition %q", key)
	}
}

// decodeMatcher accepts a bare string (equals-shorthand) or a single-key
// map naming the variant: equals/contains/regex.
func decodeMatcher(v interface{}) (*bspec.Matcher, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return &bspec.Matcher{Kind: bspec.MatchEquals, Value: s}, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("matcher: expected a string or a single-key map")
	}
	key, payload, err := singleKey(m)
	if err != nil {
		return nil, err
	}
	value, ok := payload.(string)
	if !ok {
		return nil, fmt.Errorf("matcher %q: expected a string value", key)
	}
	switch key {
	case "equals":
		return &bspec.Matcher{Kind: bspec.MatchEquals, Value: value}, nil
	case "contains":
		return &bspec.Matcher{Kind: bspec.MatchContains, Value: value}, nil
	case "regex":
		return &bspec.Matcher{Kind: bspec.MatchRegex, Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown matcher %q", key)
	}
}

func decodeExpect(m map[string]interface{}) (bspec.ExpectSpec, error) {
	var out bspec.ExpectSpec
	if m == nil {
		return out, nil
	}

	var p struct {
		Exit   *int                     `mapstructure:"exit"`
		Signal *int                     `mapstructure:"signal"`
		Stdout interface{}              `mapstructure:"stdout"`
		Stderr interface{}              `mapstructure:"stderr"`
		Files  []rawFileAssertion       `mapstructure:"files"`
		Tree   *rawTreeAssertion        `mapstructure:"tree"`
		Sql    []map[string]interface{} `mapstructure:"sql"`
	}
	if err := decodeInto(m, &p); err != nil {
		return out, err
	}

	out.Exit = p.Exit
	out.Signal = p.Signal

	stdout, err := decodeMatcher(p.Stdout)
	if err != nil {
		return out, fmt.Errorf("stdout: %w", err)
	}
	out.Stdout = stdout

	stderr, err := decodeMatcher(p.Stderr)
	if err != nil {
		return out, fmt.Errorf("stderr: %w", err)
	}
	out.Stderr = stderr

	for i, fa := range p.Files {
		assertion, err := fa.toFileAssertion()
		if err != nil {
			return out, fmt.Errorf("files[%d]: %w", i, err)
		}
		out.Files = append(out.Files, assertion)
	}

	if p.Tree != nil {
		tree, err := p.Tree.toTreeAssertion()
		if err != nil {
			return out, fmt.Errorf("tree: %w", err)
		}
		out.Tree = tree
	}

	for i, sm := range p.Sql {
		assertion, err := decodeSqlAssertion(sm)
		if err != nil {
			return out, fmt.Errorf("sql[%d]: %w", i, err)
		}
		out.Sql = append(out.Sql, assertion)
	}

	return out, nil
}

type rawFileAssertion struct {
	Path     string      `mapstructure:"path"`
	Exists   *bool       `mapstructure:"exists"`
	Contents interface{} `mapstructure:"contents"`
}

func (r rawFileAssertion) toFileAssertion() (bspec.FileAssertion, error) {
	fa := bspec.FileAssertion{Path: r.Path, Exists: true}
	if r.Exists != nil {
		fa.Exists = *r.Exists
	}
	contents, err := decodeMatcher(r.Contents)
	if err != nil {
		return fa, err
	}
	fa.Contents = contents
	return fa, nil
}

type rawTreeAssertion struct {
	Root     string             `mapstructure:"root"`
	Contains []rawFileAssertion `mapstructure:"contains"`
	Excludes []string           `mapstructure:"excludes"`
}

func (r rawTreeAssertion) toTreeAssertion() (*bspec.TreeAssertion, error) {
	ta := &bspec.TreeAssertion{Root: r.Root, Excludes: r.Excludes}
	for i, c := range r.Contains {
		contents, err := decodeMatcher(c.Contents)
		if err != nil {
			return nil, fmt.Errorf("contains[%d]: %w", i, err)
		}
		ta.Contains = append(ta.Contains, bspec.TreeEntry{Path: c.Path, Contents: contents})
	}
	return ta, nil
}

func decodeSqlAssertion(m map[string]interface{}) (bspec.SqlAssertion, error) {
	key, payload, err := singleKey(m)
	if err != nil {
		return bspec.SqlAssertion{}, err
	}

	switch key {
	case "query":
		var p struct {
			Database      string      `mapstructure:"database"`
			Query         string      `mapstructure:"query"`
			Returns       interface{} `mapstructure:"returns"`
			ReturnsEmpty  bool        `mapstructure:"returns_empty"`
			ReturnsNull   bool        `mapstructure:"returns_null"`
			ReturnsOneRow bool        `mapstructure:"returns_one_row"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.SqlAssertion{}, err
		}
		returns, err := decodeMatcher(p.Returns)
		if err != nil {
			return bspec.SqlAssertion{}, fmt.Errorf("returns: %w", err)
		}
		return bspec.SqlAssertion{
			Kind: bspec.SqlQuery, Database: p.Database, Query: p.Query,
			Returns: returns, ReturnsEmpty: p.ReturnsEmpty,
			ReturnsNull: p.ReturnsNull, ReturnsOneRow: p.ReturnsOneRow,
		}, nil

	case "table_exists":
		var p struct {
			Database string `mapstructure:"database"`
			Table    string `mapstructure:"name"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.SqlAssertion{}, err
		}
		return bspec.SqlAssertion{Kind: bspec.SqlTableExists, Database: p.Database, Table: p.Table}, nil

	case "table_not_exists":
		var p struct {
			Database string `mapstructure:"database"`
			Table    string `mapstructure:"name"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.SqlAssertion{}, err
		}
		return bspec.SqlAssertion{Kind: bspec.SqlTableNotExists, Database: p.Database, Table: p.Table}, nil

	case "row_count":
		var p struct {
			Database    string `mapstructure:"database"`
			Table       string `mapstructure:"table"`
			Equals      *int64 `mapstructure:"equals"`
			GreaterThan *int64 `mapstructure:"greater_than"`
			LessThan    *int64 `mapstructure:"less_than"`
		}
		if err := decodeInto(payload, &p); err != nil {
			return bspec.SqlAssertion{}, err
		}
		sa := bspec.SqlAssertion{Kind: bspec.SqlRowCount, Database: p.Database, RowCountTable: p.Table}
		switch {
		case p.Equals != nil:
			sa.RowCountOp, sa.RowCountValue = bspec.RowCountEquals, *p.Equals
		case p.GreaterThan != nil:
			sa.RowCountOp, sa.RowCountValue = bspec.RowCountGreaterThan, *p.GreaterThan
		case p.LessThan != nil:
			sa.RowCountOp, sa.RowCountValue = bspec.RowCountLessThan, *p.LessThan
		default:
			return bspec.SqlAssertion{}, fmt.Errorf("row_count: one of equals/greater_than/less_than is required")
		}
		return sa, nil

	default:
		return bspec.SqlAssertion{}, fmt.Errorf("unknown sql assertion %q", key)
	}
}
