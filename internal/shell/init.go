package shell

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
)

// ErrUnsupportedShell is returned by Lookup for shells without a dialect.
var ErrUnsupportedShell = errors.New("unsupported shell")

// Dialect knows how one shell loads the prompt integration and how it
// assigns environment variables.
type Dialect struct {
	Name   string
	quote  func(string) string
	assign string // fmt verb taking name then quoted value
}

// EnvVar is a single exported prompt variable.
type EnvVar struct {
	Name  string
	Value string
}

var dialects = map[string]Dialect{
	"bash": {Name: "bash", quote: posixQuote, assign: "export %s=%s\n"},
	"zsh":  {Name: "zsh", quote: posixQuote, assign: "export %s=%s\n"},
	"fish": {Name: "fish", quote: fishQuote, assign: "set -gx %s %s\n"},
}

var scripts = template.Must(template.New("init").Parse(`
{{- define "header"}}# daybook shell integration ({{.Name}})
{{end}}
{{- define "posix"}}__daybook_prompt_hook() {
  eval "$(command daybook status --env --shell {{.Name}} 2>/dev/null)"
}

daybook_prompt_info() {
  command daybook status 2>/dev/null
}
{{end}}
{{- define "bash"}}{{template "header" .}}{{template "posix" .}}
case ";${PROMPT_COMMAND};" in
  *";__daybook_prompt_hook;"*) ;;
  ";;") PROMPT_COMMAND="__daybook_prompt_hook" ;;
  *) PROMPT_COMMAND="__daybook_prompt_hook;${PROMPT_COMMAND}" ;;
esac

eval "$(command daybook completion bash 2>/dev/null)"
{{end}}
{{- define "zsh"}}{{template "header" .}}{{template "posix" .}}
autoload -Uz add-zsh-hook
add-zsh-hook precmd __daybook_prompt_hook

eval "$(command daybook completion zsh 2>/dev/null)"
{{end}}
{{- define "fish"}}{{template "header" .}}function __daybook_prompt_hook --on-event fish_prompt
  command daybook status --env --shell fish 2>/dev/null | source
end

function daybook_prompt_info
  command daybook status 2>/dev/null
end

command daybook completion fish 2>/dev/null | source
{{end}}`))

// Lookup returns the dialect for a shell name.
func Lookup(name string) (Dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedShell, name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names lists the supported shells alphabetically.
func Names() []string {
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WriteInit writes the script that installs the prompt hook and completions.
func (d Dialect) WriteInit(w io.Writer) error {
	return scripts.ExecuteTemplate(w, d.Name, d)
}

// WriteEnv writes one assignment per variable, in order.
func (d Dialect) WriteEnv(w io.Writer, vars []EnvVar) error {
	for _, v := range vars {
		if _, err := fmt.Fprintf(w, d.assign, v.Name, d.quote(v.Value)); err != nil {
			return err
		}
	}
	return nil
}

func posixQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
