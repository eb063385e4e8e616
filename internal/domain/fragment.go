package domain

const (
	// TemplateCodeInterpreter runs code in-process in the sandbox and returns
	// captured output. Every other template is treated as a long-running web
	// server exposed through the sandbox's port mapping.
	TemplateCodeInterpreter = "code-interpreter-v1"

	DefaultWebPort = 80
)

// FragmentFile is one file of a multi-file fragment.
type FragmentFile struct {
	Path    string `json:"file_path"`
	Content string `json:"file_content"`
}

// Fragment is a generated code artifact submitted for execution.
// Either Code (single file at FilePath) or Files is populated.
type Fragment struct {
	Template                   string         `json:"template"`
	Code                       string         `json:"code,omitempty"`
	Files                      []FragmentFile `json:"files,omitempty"`
	HasAdditionalDependencies  bool           `json:"has_additional_dependencies"`
	InstallDependenciesCommand string         `json:"install_dependencies_command,omitempty"`
	// StartCommand launches the web server for non-interpreter templates.
	// Empty means the template starts its own server.
	StartCommand string `json:"start_command,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	Port         int    `json:"port,omitempty"`
}

// WebPort returns the declared port, falling back to the default.
func (f *Fragment) WebPort() int {
	if f.Port <= 0 {
		return DefaultWebPort
	}
	return f.Port
}

// IsInterpreter reports whether the fragment targets the interpreter template.
func (f *Fragment) IsInterpreter() bool {
	return f.Template == TemplateCodeInterpreter
}

// ==================== EXECUTION RESULTS ====================

// RuntimeError describes a runtime failure raised by interpreted code.
type RuntimeError struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Traceback string `json:"traceback,omitempty"`
}

// CellResult is one structured output cell produced by the interpreter,
// keyed by mime-ish representation names as the provider returns them.
type CellResult map[string]interface{}

// InterpreterResult is the outcome of an interpreter-template run.
type InterpreterResult struct {
	Stdout       []string          `json:"stdout"`
	Stderr       []string          `json:"stderr"`
	RuntimeError *RuntimeError     `json:"runtimeError,omitempty"`
	CellResults  []CellResult      `json:"cellResults"`
	Files        []*FileSystemNode `json:"files"`
}

// WebResult is the outcome of a web-template run.
type WebResult struct {
	URL   string            `json:"url"`
	Files []*FileSystemNode `json:"files"`
}

// ExecutionResult is the tagged outcome of running a fragment. Exactly one of
// Interpreter or Web is non-nil, selected by the requested template.
type ExecutionResult struct {
	SbxID       string             `json:"sbxId"`
	Template    string             `json:"template"`
	Interpreter *InterpreterResult `json:"-"`
	Web         *WebResult         `json:"-"`
}

// ==================== SANDBOX I/O ====================

// CommandResult captures a shell command run inside a sandbox.
type CommandResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}

// CodeExecution captures an in-process code run inside a sandbox.
type CodeExecution struct {
	Stdout  []string      `json:"stdout"`
	Stderr  []string      `json:"stderr"`
	Error   *RuntimeError `json:"error,omitempty"`
	Results []CellResult  `json:"results"`
}
