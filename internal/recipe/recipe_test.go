package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDefaultRecipe(t *testing.T) {
	r := Default()

	if r.Name != "lvm2" {
		t.Errorf("expected name lvm2, got %q", r.Name)
	}
	if r.Destination != "/usr/local/lvm2" {
		t.Errorf("unexpected destination %q", r.Destination)
	}
	if r.Repository != "https://git.fedorahosted.org/git/lvm2.git" {
		t.Errorf("unexpected repository %q", r.Repository)
	}
	if r.Reference != "v2_02_103" {
		t.Errorf("unexpected reference %q", r.Reference)
	}

	want := []string{
		"./configure --enable-static_link",
		"make device-mapper",
		"make install_device-mapper",
	}
	if !reflect.DeepEqual(r.Commands, want) {
		t.Errorf("unexpected commands %v", r.Commands)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("built-in recipe should validate: %v", err)
	}
}

func TestDefaultRecipeIsACopy(t *testing.T) {
	r := Default()
	r.Commands[0] = "./configure"

	if Default().Commands[0] != "./configure --enable-static_link" {
		t.Error("modifying a returned recipe must not change the built-in one")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *Recipe)
		wantErr error
	}{
		{"missing destination", func(r *Recipe) { r.Destination = "" }, ErrMissingDestination},
		{"missing repository", func(r *Recipe) { r.Repository = "" }, ErrMissingRepository},
		{"missing reference", func(r *Recipe) { r.Reference = "" }, ErrMissingReference},
		{"option-like reference", func(r *Recipe) { r.Reference = "--upload-pack=x" }, ErrInvalidReference},
		{"reference with space", func(r *Recipe) { r.Reference = "v2 02" }, ErrInvalidReference},
		{"no commands", func(r *Recipe) { r.Commands = nil }, ErrMissingCommands},
		{"bad env name", func(r *Recipe) { r.Env = map[string]string{"1FLAGS": "x"} }, ErrInvalidEnv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			tt.modify(r)
			if err := r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateRejectsBlankCommand(t *testing.T) {
	r := Default()
	r.Commands = append(r.Commands, "   ")

	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "command 4 is empty") {
		t.Errorf("expected blank command error, got %v", err)
	}
}

// TestEnvListKeysSortBeforeEquals pins the case where one key is a prefix of another
func TestEnvListKeysSortBeforeEquals(t *testing.T) {
	r := &Recipe{Env: map[string]string{"f3sia1": "a", "f": "b"}}

	want := []string{"f=b", "f3sia1=a"}
	if got := r.EnvList(); !reflect.DeepEqual(got, want) {
		t.Errorf("EnvList() = %v, want %v", got, want)
	}
}

// TestEnvListIsSorted checks that env pairs are deterministic
func TestEnvListIsSorted(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("EnvList is sorted and has one entry per key", prop.ForAll(
		func(env map[string]string) bool {
			r := &Recipe{Env: env}
			list := r.EnvList()
			if len(list) != len(env) {
				return false
			}
			keys := make([]string, 0, len(list))
			for _, pair := range list {
				k, v, ok := strings.Cut(pair, "=")
				if !ok || env[k] != v {
					return false
				}
				keys = append(keys, k)
			}
			return sort.StringsAreSorted(keys)
		},
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestParse(t *testing.T) {
	data := `
[lvm2]
destination = "/usr/local/lvm2"
repository = "https://git.fedorahosted.org/git/lvm2.git"
reference = "v2_02_103"
commands = ["./configure --enable-static_link", "make device-mapper", "make install_device-mapper"]

[lvm2.env]
CFLAGS = "-O2"

[thin-provisioning-tools]
destination = "~/src/tpt"
repository = "https://github.com/jthornber/thin-provisioning-tools.git"
reference = "v0.9.0"
remote = "upstream"
requires = ["git", "make", "c++"]
commands = ["autoreconf", "./configure", "make", "make install"]
`
	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !reflect.DeepEqual(set.Names(), []string{"lvm2", "thin-provisioning-tools"}) {
		t.Errorf("unexpected names %v", set.Names())
	}

	lvm2, err := set.Get("lvm2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if lvm2.Reference != "v2_02_103" || lvm2.RemoteName() != "origin" {
		t.Errorf("unexpected lvm2 recipe %+v", lvm2)
	}
	if !reflect.DeepEqual(lvm2.Requires, DefaultRequires) {
		t.Errorf("expected default requires, got %v", lvm2.Requires)
	}
	if !reflect.DeepEqual(lvm2.EnvList(), []string{"CFLAGS=-O2"}) {
		t.Errorf("unexpected env %v", lvm2.EnvList())
	}

	tpt, _ := set.Get("thin-provisioning-tools")
	if tpt.RemoteName() != "upstream" {
		t.Errorf("expected remote upstream, got %q", tpt.RemoteName())
	}
	if len(tpt.Commands) != 4 {
		t.Errorf("expected 4 commands, got %v", tpt.Commands)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{name: "empty file", data: "", wantErr: ErrNoRecipes},
		{
			name:    "missing commands",
			data:    "[lvm2]\ndestination = \"/x\"\nrepository = \"r\"\nreference = \"v1\"\n",
			wantErr: ErrMissingCommands,
		},
		{
			name:    "unknown key",
			data:    "[lvm2]\ndestination = \"/x\"\nrepository = \"r\"\nreference = \"v1\"\ncommands = [\"make\"]\nbranch = \"main\"\n",
			wantMsg: "unknown key",
		},
		{name: "invalid toml", data: "[lvm2\n", wantMsg: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message containing %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, ErrRecipesFileNotFound) {
		t.Errorf("expected ErrRecipesFileNotFound, got %v", err)
	}

	path := filepath.Join(dir, "recipes.toml")
	content := "[lvm2]\ndestination = \"/usr/local/lvm2\"\nrepository = \"https://git.fedorahosted.org/git/lvm2.git\"\nreference = \"v2_02_103\"\ncommands = [\"make\"]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if _, err := set.Get("lvm2"); err != nil {
		t.Errorf("expected lvm2 recipe: %v", err)
	}
}

func TestSetSelect(t *testing.T) {
	a := Default()
	b := Default()
	b.Name = "device-mapper-tools"
	set := NewSet(a, b)

	all, err := set.Select(nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(all) != 2 || all[0].Name != "device-mapper-tools" || all[1].Name != "lvm2" {
		t.Errorf("expected all recipes in sorted order, got %v", names(all))
	}

	one, err := set.Select([]string{"lvm2"})
	if err != nil || len(one) != 1 || one[0].Name != "lvm2" {
		t.Errorf("expected only lvm2, got %v, %v", names(one), err)
	}

	if _, err := set.Select([]string{"e2fsprogs"}); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestCheckoutPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := Checkout{Destination: "~/src/lvm2"}.Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if path != filepath.Join(home, "src", "lvm2") {
		t.Errorf("unexpected path %q", path)
	}
}

func names(recipes []*Recipe) []string {
	var out []string
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}
