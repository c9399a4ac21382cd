package specyaml

// rawSuite mirrors the suite-level document: suite defaults, database
// definitions, and suite setup/teardown (Suite entity).
type rawSuite struct {
	Binary        string                 `yaml:"binary"`
	Timeout       string                 `yaml:"timeout"`
	Env           map[string]string      `yaml:"env"`
	InheritEnv    *bool                  `yaml:"inherit_env"`
	Serial        bool                   `yaml:"serial"`
	CaptureFSDiff bool                   `yaml:"capture_fs_diff"`
	SandboxDir    string                 `yaml:"sandbox_dir"`
	Setup         []map[string]interface{} `yaml:"setup"`
	Teardown      []map[string]interface{} `yaml:"teardown"`
	Databases     map[string]rawDatabase `yaml:"databases"`
}

// rawFile mirrors one specification document (File entity).
type rawFile struct {
	Binary        string                   `yaml:"binary"`
	Timeout       string                   `yaml:"timeout"`
	Env           map[string]string        `yaml:"env"`
	InheritEnv    *bool                    `yaml:"inherit_env"`
	Serial        bool                     `yaml:"serial"`
	CaptureFSDiff *bool                    `yaml:"capture_fs_diff"`
	SandboxDir    string                   `yaml:"sandbox_dir"`
	Setup         []map[string]interface{} `yaml:"setup"`
	Teardown      []map[string]interface{} `yaml:"teardown"`
	Databases     map[string]rawDatabase   `yaml:"databases"`
	Tests         []rawTest                `yaml:"tests"`
}

type rawDatabase struct {
	Driver    string `yaml:"driver"`
	URL       string `yaml:"url"`
	Isolation string `yaml:"isolation"`
}

// rawTest accepts either the multi-step form (Steps non-empty) or the
// legacy single-implicit-step form (Run/Expect set directly on the test,
// "either a single implicit step ... or an ordered non-empty
// list of Steps").
type rawTest struct {
	Name     string                   `yaml:"name"`
	Serial   bool                     `yaml:"serial"`
	SkipIf   []map[string]interface{} `yaml:"skip_if"`
	Require  []map[string]interface{} `yaml:"require"`
	Setup    []map[string]interface{} `yaml:"setup"`
	Teardown []map[string]interface{} `yaml:"teardown"`
	Steps    []rawStep                `yaml:"steps"`

	// legacy single-step shorthand
	Run    *rawRunSpec            `yaml:"run"`
	Expect map[string]interface{} `yaml:"expect"`
}

type rawStep struct {
	Name     string                   `yaml:"name"`
	Setup    []map[string]interface{} `yaml:"setup"`
	Run      rawRunSpec               `yaml:"run"`
	Expect   map[string]interface{}   `yaml:"expect"`
	Teardown []map[string]interface{} `yaml:"teardown"`
}

type rawRunSpec struct {
	Cmd     string            `yaml:"cmd"`
	Args    []string          `yaml:"args"`
	Stdin   string            `yaml:"stdin"`
	Timeout string            `yaml:"timeout"`
	Env     map[string]string `yaml:"env"`
}
