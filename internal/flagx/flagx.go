// Package flagx contains helpers for cooperating flag sets. Several
// components read their flags straight from os.Args, so each one has to
// skip the flags it does not own instead of failing on them.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the flags named
// in allowed. Both the "-name value" and the "-name=value" spellings are
// recognized; everything else is dropped.
func FilterArgs(args []string, allowed []string) []string {
	want := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		want[name] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		if name, _, found := strings.Cut(arg, "="); found {
			if want[name] {
				out = append(out, arg)
			}
			continue
		}
		if !want[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFilePath extracts the value of the -c/-config flag from os.Args
// without disturbing flags owned by other components. It returns an
// empty string when neither flag is present.
func ConfigFilePath() string {
	var path string

	fs := flag.NewFlagSet("configpath", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to a JSON config file")
	fs.StringVar(&path, "c", "", "path to a JSON config file (shorthand)")

	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))
	return path
}
