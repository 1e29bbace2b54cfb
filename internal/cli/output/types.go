package output

// CheckSummary counts the outcome of a check run.
type CheckSummary struct {
	Units      int `json:"units"`
	Edges      int `json:"edges"`
	Evaluated  int `json:"evaluated"`
	Violations int `json:"violations"`
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
	Info       int `json:"info"`
	Hints      int `json:"hints"`
}

// CheckFinding is one finding in JSON output.
type CheckFinding struct {
	RuleID       string   `json:"rule_id"`
	Rule         string   `json:"rule"`
	Severity     string   `json:"severity"`
	Subject      string   `json:"subject"`
	Package      string   `json:"package"`
	Violated     bool     `json:"violated"`
	Message      string   `json:"message"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// CheckOutput is the JSON document written by the check command.
type CheckOutput struct {
	RunID      string         `json:"run_id"`
	Source     string         `json:"source"`
	DurationMS int64          `json:"duration_ms"`
	Rules      []string       `json:"rules"`
	Summary    CheckSummary   `json:"summary"`
	Findings   []CheckFinding `json:"findings"`
}

// GraphPackage is one package of the package-level view.
type GraphPackage struct {
	Name      string   `json:"name"`
	Units     int      `json:"units"`
	API       bool     `json:"api"`
	Internal  bool     `json:"internal"`
	DependsOn []string `json:"depends_on"`
	UsedBy    []string `json:"used_by"`
}

// GraphOutput is the JSON document written by the graph command. Units and
// Edges count only the packages shown.
type GraphOutput struct {
	Source   string         `json:"source"`
	Units    int            `json:"units"`
	Edges    int            `json:"edges"`
	Packages []GraphPackage `json:"packages"`
	Roots    []string       `json:"roots"`
	Leaves   []string       `json:"leaves"`
	Levels   [][]string     `json:"levels,omitempty"`
	Cycles   [][]string     `json:"cycles,omitempty"`
}
