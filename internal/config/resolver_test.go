package config

import (
	"testing"
	"time"

	"github.com/adamcooper1386/bintest/internal/spec"
	"github.com/stretchr/testify/assert"
)

func ptrDuration(d time.Duration) *time.Duration { return &d }
func ptrBool(b bool) *bool                        { return &b }

func TestResolverPrecedence(t *testing.T) {
	t.Run("test timeout beats file, file beats suite, suite beats default", func(t *testing.T) {
		suite := &spec.Suite{Timeout: 5 * time.Second}
		file := &spec.File{Timeout: ptrDuration(2 * time.Second)}
		r := Resolver{Suite: suite, File: file}

		assert.Equal(t, 2*time.Second, r.Timeout(nil))
		assert.Equal(t, 1*time.Second, r.Timeout(ptrDuration(1*time.Second)))

		r2 := Resolver{Suite: suite, File: &spec.File{}}
		assert.Equal(t, 5*time.Second, r2.Timeout(nil))

		r3 := Resolver{}
		assert.Equal(t, DefaultTimeout, r3.Timeout(nil))
	})

	t.Run("inherit_env most specific wins", func(t *testing.T) {
		suite := &spec.Suite{InheritEnv: ptrBool(true)}
		file := &spec.File{InheritEnv: ptrBool(false)}
		r := Resolver{Suite: suite, File: file}

		assert.False(t, r.InheritEnv(nil))
		assert.True(t, r.InheritEnv(ptrBool(true)))

		r2 := Resolver{Suite: suite, File: &spec.File{}}
		assert.True(t, r2.InheritEnv(nil))
	})

	t.Run("binary: file overrides suite", func(t *testing.T) {
		r := Resolver{
			Suite: &spec.Suite{Binary: "/usr/bin/suite-binary"},
			File:  &spec.File{Binary: "/usr/bin/file-binary"},
		}
		assert.Equal(t, "/usr/bin/file-binary", r.Binary())

		r2 := Resolver{Suite: &spec.Suite{Binary: "/usr/bin/suite-binary"}, File: &spec.File{}}
		assert.Equal(t, "/usr/bin/suite-binary", r2.Binary())
	})

	t.Run("databases merge by name, file wins on conflict", func(t *testing.T) {
		r := Resolver{
			Suite: &spec.Suite{Databases: map[string]spec.DatabaseDef{
				"main": {Name: "main", URL: "sqlite::memory:"},
				"logs": {Name: "logs", URL: "sqlite::memory:"},
			}},
			File: &spec.File{Databases: map[string]spec.DatabaseDef{
				"main": {Name: "main", URL: "sqlite:///file.db"},
			}},
		}
		merged := r.Databases()
		assert.Len(t, merged, 2)
		assert.Equal(t, "sqlite:///file.db", merged["main"].URL)
		assert.Equal(t, "sqlite::memory:", merged["logs"].URL)
	})

	t.Run("env merges additively, file overrides suite", func(t *testing.T) {
		r := Resolver{
			Suite: &spec.Suite{Env: map[string]string{"A": "suite", "B": "suite"}},
			File:  &spec.File{Env: map[string]string{"B": "file"}},
		}
		base := r.BaseEnv()
		assert.Equal(t, "suite", base["A"])
		assert.Equal(t, "file", base["B"])

		overlaid := Overlay(base, map[string]string{"A": "test"})
		assert.Equal(t, "test", overlaid["A"])
		assert.Equal(t, "file", overlaid["B"])
		// original untouched
		assert.Equal(t, "suite", base["A"])
	})
}
