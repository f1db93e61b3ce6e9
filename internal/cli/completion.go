package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so a new flag only needs an entry there.
type FlagCompletion struct {
	Long       string   // long flag name without "--"
	Short      string   // short flag without "-"
	Help       string   // description text
	Values     []string // suggested values (nil = boolean or free-form)
	ValueName  string   // label for the value in zsh
	IsPath     bool     // the flag takes a file or directory path
	IsStrategy bool     // values come from the strategy list
}

var flagRegistry = []FlagCompletion{
	{Long: "help", Help: "Show help message"},
	{Long: "portfolio-size", Short: "p", Help: "Portfolio size to evaluate", Values: []string{"1", "2", "3", "4", "5"}, ValueName: "size"},
	{Long: "schedule", Short: "s", Help: "Rebalancing interval in trading days", Values: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, ValueName: "days"},
	{Long: "hedge-type", Short: "h", Help: "Hedge strategy to evaluate", IsStrategy: true, ValueName: "strategy"},
	{Long: "dataset", Help: "Restrict the sweep to a sheet", ValueName: "sheet"},
	{Long: "data-dir", Help: "Directory of CSV option sheets", IsPath: true, ValueName: "dir"},
	{Long: "seed", Help: "Seed for the synthetic options data", ValueName: "number"},
	{Long: "workers", Help: "Number of parallel workers", ValueName: "number"},
	{Long: "timeout", Help: "Maximum run time", Values: []string{"30s", "1m", "5m", "10m"}, ValueName: "duration"},
	{Long: "failure-policy", Help: "Task failure policy", Values: []string{"fail-fast", "collect-all"}, ValueName: "policy"},
	{Long: "output", Short: "o", Help: "Write results to a .json or .csv file", IsPath: true, ValueName: "file"},
	{Long: "quiet", Short: "q", Help: "One line per result"},
	{Long: "verbose", Short: "v", Help: "Per-task timings and resource summary"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "tui", Help: "Interactive dashboard"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error", "disabled"}, ValueName: "level"},
	{Long: "metrics-addr", Help: "Serve Prometheus metrics on this address", ValueName: "addr"},
	{Long: "store-dsn", Help: "PostgreSQL connection string", ValueName: "dsn"},
	{Long: "publish-url", Help: "AMQP URL for result events", ValueName: "url"},
	{Long: "completion", Help: "Print a shell completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell"},
}

// GenerateCompletion writes a completion script for shell to out. The
// strategy names are offered as --hedge-type values.
func GenerateCompletion(out io.Writer, shell string, strategies []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(strategies)
	case "zsh":
		script = zshCompletion(strategies)
	case "fish":
		script = fishCompletion(strategies)
	case "powershell", "ps":
		script = powerShellCompletion(strategies)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

func flagValues(f FlagCompletion, strategies []string) []string {
	if f.IsStrategy {
		return strategies
	}
	return f.Values
}

func bashCompletion(strategies []string) string {
	var opts []string
	var cases strings.Builder
	for _, f := range flagRegistry {
		var patterns []string
		if f.Long != "" {
			patterns = append(patterns, "--"+f.Long)
		}
		if f.Short != "" {
			patterns = append(patterns, "-"+f.Short)
		}
		opts = append(opts, patterns...)

		var body string
		switch {
		case f.IsPath:
			body = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case len(flagValues(f, strategies)) > 0:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(flagValues(f, strategies), " "))
		default:
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(patterns, "|"), body)
	}

	return fmt.Sprintf(`# Bash completion script for hedgesweep
# Add this to your ~/.bashrc or ~/.bash_completion

_hedgesweep_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _hedgesweep_completions hedgesweep
`, strings.Join(opts, " "), cases.String())
}

func zshCompletion(strategies []string) string {
	var args []string
	for _, f := range flagRegistry {
		var suffix string
		switch {
		case f.IsPath:
			suffix = fmt.Sprintf(":%s:_files", f.ValueName)
		case len(flagValues(f, strategies)) > 0:
			suffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(flagValues(f, strategies), " "))
		case f.ValueName != "":
			suffix = fmt.Sprintf(":%s:", f.ValueName)
		}
		if f.Short != "" {
			args = append(args, fmt.Sprintf("        '*'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Help, suffix))
		} else {
			args = append(args, fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, suffix))
		}
	}

	return fmt.Sprintf(`#compdef hedgesweep

# Zsh completion script for hedgesweep
# Place this file in a directory of $fpath

_hedgesweep() {
    _arguments -s \
%s
}

_hedgesweep "$@"
`, strings.Join(args, " \\\n"))
}

func fishCompletion(strategies []string) string {
	lines := []string{
		"# Fish completion script for hedgesweep",
		"# Add this to ~/.config/fish/completions/hedgesweep.fish",
		"",
		"complete -c hedgesweep -f",
	}
	for _, f := range flagRegistry {
		parts := []string{"complete -c hedgesweep"}
		if f.Short != "" {
			parts = append(parts, "-s "+f.Short)
		}
		parts = append(parts, "-l "+f.Long, fmt.Sprintf("-d '%s'", f.Help))
		switch {
		case f.IsPath:
			parts = append(parts, "-rF")
		case len(flagValues(f, strategies)) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(flagValues(f, strategies), " ")))
		case f.ValueName != "":
			parts = append(parts, "-x")
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n") + "\n"
}

func powerShellCompletion(strategies []string) string {
	var options, switches []string
	for _, f := range flagRegistry {
		if f.Short != "" {
			options = append(options, fmt.Sprintf("        @{Name = '-%s'; Description = '%s' }", f.Short, f.Help))
		}
		options = append(options, fmt.Sprintf("        @{Name = '--%s'; Description = '%s' }", f.Long, f.Help))

		values := flagValues(f, strategies)
		if len(values) == 0 {
			continue
		}
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		switches = append(switches, fmt.Sprintf(`        '--%s' {
            @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, f.Long, strings.Join(quoted, ", ")))
	}

	return fmt.Sprintf(`# PowerShell completion script for hedgesweep
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName 'hedgesweep' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
%s
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, strings.Join(options, "\n"), strings.Join(switches, "\n"))
}
