package stimulus

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// BuiltinNames lists the bundled scenarios.
func BuiltinNames() []string {
	entries, err := scenarioFS.ReadDir("scenarios")
	if err != nil {
		panic(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}

	sort.Strings(names)

	return names
}

// Builtin returns a bundled scenario by name.
func Builtin(name string) (*Script, error) {
	data, err := scenarioFS.ReadFile(path.Join("scenarios", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown scenario %q, available: %s",
			name, strings.Join(BuiltinNames(), ", "))
	}

	return Parse(data)
}
