// Package recipe defines what srcsync keeps in sync and how it builds it.
//
// A recipe pins one checkout (destination, repository, reference) and lists
// the shell commands that configure, build and install from it. The
// built-in recipe keeps LVM2 at v2_02_103 and installs a statically linked
// device-mapper. Additional recipes are read from a TOML file where each
// top-level table is one recipe:
//
//	[lvm2]
//	destination = "/usr/local/lvm2"
//	repository  = "https://git.fedorahosted.org/git/lvm2.git"
//	reference   = "v2_02_103"
//	commands    = ["./configure --enable-static_link", "make device-mapper", "make install_device-mapper"]
package recipe

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/obentoo/srcsync/internal/common/config"
)

// Built-in recipe constants
const (
	DefaultName        = "lvm2"
	DefaultDestination = "/usr/local/lvm2"
	DefaultRepository  = "https://git.fedorahosted.org/git/lvm2.git"
	DefaultReference   = "v2_02_103"
	DefaultRemote      = "origin"
)

// DefaultCommands configures, builds and installs device-mapper only
var DefaultCommands = []string{
	"./configure --enable-static_link",
	"make device-mapper",
	"make install_device-mapper",
}

// DefaultRequires are the tools the build toolchain and git client provide
var DefaultRequires = []string{"git", "make", "cc"}

var (
	// ErrRecipeNotFound is returned when a named recipe does not exist
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrRecipesFileNotFound is returned when the recipe file does not exist
	ErrRecipesFileNotFound = errors.New("recipes file not found")
	// ErrNoRecipes is returned when a recipe file defines nothing
	ErrNoRecipes = errors.New("no recipes defined")
	// ErrMissingDestination is returned when a recipe has no destination
	ErrMissingDestination = errors.New("missing required field: destination")
	// ErrMissingRepository is returned when a recipe has no repository
	ErrMissingRepository = errors.New("missing required field: repository")
	// ErrMissingReference is returned when a recipe has no reference
	ErrMissingReference = errors.New("missing required field: reference")
	// ErrMissingCommands is returned when a recipe has no build commands
	ErrMissingCommands = errors.New("missing required field: commands")
	// ErrInvalidReference is returned for references git would read as an option
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidEnv is returned for env keys that are not shell variable names
	ErrInvalidEnv = errors.New("invalid env variable name")
)

// Checkout pins a working directory to a revision of a remote repository
type Checkout struct {
	Destination string `toml:"destination"`
	Repository  string `toml:"repository"`
	Reference   string `toml:"reference"`
	Remote      string `toml:"remote,omitempty"`
}

// RemoteName returns the remote to fetch from, defaulting to origin
func (c Checkout) RemoteName() string {
	if c.Remote == "" {
		return DefaultRemote
	}
	return c.Remote
}

// Path returns Destination with a leading ~ expanded
func (c Checkout) Path() (string, error) {
	return config.ExpandHome(c.Destination)
}

// Recipe is one Sync-and-Build Step definition
type Recipe struct {
	Name string `toml:"-"`
	Checkout
	Commands []string          `toml:"commands"`
	Env      map[string]string `toml:"env,omitempty"`
	Requires []string          `toml:"requires,omitempty"`
}

// Default returns the built-in LVM2 recipe
func Default() *Recipe {
	return &Recipe{
		Name: DefaultName,
		Checkout: Checkout{
			Destination: DefaultDestination,
			Repository:  DefaultRepository,
			Reference:   DefaultReference,
			Remote:      DefaultRemote,
		},
		Commands: append([]string(nil), DefaultCommands...),
		Requires: append([]string(nil), DefaultRequires...),
	}
}

// EnvList returns Env as sorted KEY=VALUE pairs
func (r *Recipe) EnvList() []string {
	keys := make([]string, 0, len(r.Env))
	for k := range r.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+r.Env[k])
	}
	return env
}

// Validate checks required fields
func (r *Recipe) Validate() error {
	if r.Destination == "" {
		return fmt.Errorf("recipe %s: %w", r.Name, ErrMissingDestination)
	}
	if r.Repository == "" {
		return fmt.Errorf("recipe %s: %w", r.Name, ErrMissingRepository)
	}
	if r.Reference == "" {
		return fmt.Errorf("recipe %s: %w", r.Name, ErrMissingReference)
	}
	if strings.HasPrefix(r.Reference, "-") || strings.ContainsAny(r.Reference, " \t\n") {
		return fmt.Errorf("recipe %s: %w: %q", r.Name, ErrInvalidReference, r.Reference)
	}
	if len(r.Commands) == 0 {
		return fmt.Errorf("recipe %s: %w", r.Name, ErrMissingCommands)
	}
	for i, c := range r.Commands {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("recipe %s: command %d is empty", r.Name, i+1)
		}
	}
	for k := range r.Env {
		if !isShellName(k) {
			return fmt.Errorf("recipe %s: %w: %q", r.Name, ErrInvalidEnv, k)
		}
	}
	return nil
}

func isShellName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Set is a collection of recipes keyed by name
type Set struct {
	recipes map[string]*Recipe
}

// NewSet builds a Set from recipes
func NewSet(recipes ...*Recipe) *Set {
	s := &Set{recipes: make(map[string]*Recipe, len(recipes))}
	for _, r := range recipes {
		s.recipes[r.Name] = r
	}
	return s
}

// DefaultSet returns a Set holding only the built-in recipe
func DefaultSet() *Set {
	return NewSet(Default())
}

// Get returns the named recipe
func (s *Set) Get(name string) (*Recipe, error) {
	r, ok := s.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, name)
	}
	return r, nil
}

// Names returns recipe names in sorted order
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.recipes))
	for name := range s.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the named recipes in the given order, or all recipes in
// sorted order when names is empty
func (s *Set) Select(names []string) ([]*Recipe, error) {
	if len(names) == 0 {
		names = s.Names()
	}
	selected := make([]*Recipe, 0, len(names))
	for _, name := range names {
		r, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, r)
	}
	return selected, nil
}

// recipesFile matches the TOML layout where each [name] table is a recipe
type recipesFile map[string]*Recipe

// LoadFile reads and validates recipes from a TOML file
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecipesFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse decodes and validates recipes from TOML text
func Parse(data string) (*Set, error) {
	var file recipesFile
	md, err := toml.Decode(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse recipes: unknown key %s", undecoded[0])
	}
	if len(file) == 0 {
		return nil, ErrNoRecipes
	}

	set := &Set{recipes: make(map[string]*Recipe, len(file))}
	for name, r := range file {
		r.Name = name
		if r.Requires == nil {
			r.Requires = append([]string(nil), DefaultRequires...)
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		set.recipes[name] = r
	}
	return set, nil
}
