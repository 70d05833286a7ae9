package infrastructure

import "strings"

// shellSpecialChars are the characters that change meaning when a command
// line is pasted into a POSIX shell.
const shellSpecialChars = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%+"

// ShellEscape quotes s for display in a command line. It is used for the
// engine log only; exec.Command never sees the result.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecialChars) {
		return s
	}

	// close the quote, emit a double-quoted ', reopen
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders binary and args as one pasteable line
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}
