// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"slices"
	"strings"

	"github.com/taskwave/taskwave/pkg/taskfile"
)

// BuildEnv composes a task's environment. Later layers override earlier ones:
//  1. host environment
//  2. root-level env_files (in order)
//  3. task-level env_files (in order)
//  4. root-level env
//  5. task-level env
//  6. overrides
func BuildEnv(tf *taskfile.Taskfile, t *taskfile.Task, host []string, overrides map[string]string) (map[string]string, error) {
	env := SliceToEnv(host)

	base := tf.BaseDir()
	for _, path := range tf.EnvFiles {
		if err := LoadEnvFile(env, path, base); err != nil {
			return nil, err
		}
	}
	for _, path := range t.EnvFiles {
		if err := LoadEnvFile(env, path, base); err != nil {
			return nil, err
		}
	}

	maps.Copy(env, tf.Env)
	maps.Copy(env, t.Env)
	maps.Copy(env, overrides)

	return env, nil
}

// SliceToEnv parses KEY=VALUE entries. Entries without '=' are ignored; on
// repeated keys the last entry wins.
func SliceToEnv(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, e := range environ {
		k, v, ok := strings.Cut(e, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// EnvToSlice converts env to KEY=VALUE form, sorted by key.
func EnvToSlice(env map[string]string) []string {
	keys := slices.Sorted(maps.Keys(env))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
