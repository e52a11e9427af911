package invbuilder

import "strings"

// DetectBuilder inspects process invocation arguments for the requested
// builder name: a "-b NAME" pair or a "--builder=NAME" argument. It returns
// "" when neither is present — detection is best-effort, not guaranteed.
func DetectBuilder(argv []string) string {
	for i, arg := range argv {
		if arg == "-b" && i+1 < len(argv) {
			return argv[i+1]
		}
	}
	for _, arg := range argv {
		if name, ok := strings.CutPrefix(arg, "--builder="); ok {
			return name
		}
	}
	return ""
}
