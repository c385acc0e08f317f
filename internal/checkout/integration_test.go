package checkout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/obentoo/srcsync/internal/common/git"
	"github.com/obentoo/srcsync/internal/common/git/gittest"
	"github.com/obentoo/srcsync/internal/recipe"
)

func TestSyncAgainstUpstream(t *testing.T) {
	for _, client := range []string{git.ClientExec, git.ClientGoGit} {
		t.Run(client, func(t *testing.T) {
			up := gittest.NewUpstream(t)
			up.Commit("2.02.102", map[string]string{"VERSION": "2.02.102\n"})
			up.Tag("v2_02_102")
			pinnedRev := up.Commit("2.02.103", map[string]string{"VERSION": "2.02.103\n"})
			up.Tag("v2_02_103")
			up.Commit("work after the release", map[string]string{"VERSION": "2.02.104-git\n"})

			co := recipe.Checkout{
				Destination: filepath.Join(t.TempDir(), "usr", "local", "lvm2"),
				Repository:  up.URL(),
				Reference:   "v2_02_103",
			}

			first, err := Sync(client, co)
			if err != nil {
				t.Fatalf("first sync failed: %v", err)
			}
			if !first.Changed || !first.Cloned || first.Revision != pinnedRev {
				t.Errorf("first sync should clone and change, got %+v", first)
			}
			assertVersion(t, co.Destination, "2.02.103\n")

			// build output must not count as a change
			if err := os.WriteFile(filepath.Join(co.Destination, "config.status"), []byte("#!/bin/sh\n"), 0755); err != nil {
				t.Fatal(err)
			}

			second, err := Sync(client, co)
			if err != nil {
				t.Fatalf("second sync failed: %v", err)
			}
			if second.Changed {
				t.Errorf("second sync should be unchanged, got %+v", second)
			}

			co.Reference = "v2_02_102"
			third, err := Sync(client, co)
			if err != nil {
				t.Fatalf("sync to new pin failed: %v", err)
			}
			if !third.Changed || third.Previous != pinnedRev {
				t.Errorf("changing the pin should change the checkout, got %+v", third)
			}
			assertVersion(t, co.Destination, "2.02.102\n")

			co.Reference = "v0_00_000"
			if _, err := Sync(client, co); err == nil {
				t.Error("unknown reference should fail")
			}
			assertVersion(t, co.Destination, "2.02.102\n")
		})
	}
}

func TestSyncFollowsMovedBranch(t *testing.T) {
	for _, client := range []string{git.ClientExec, git.ClientGoGit} {
		t.Run(client, func(t *testing.T) {
			up := gittest.NewUpstream(t)
			firstRev := up.Commit("2.02.103", map[string]string{"VERSION": "2.02.103\n"})

			co := recipe.Checkout{
				Destination: filepath.Join(t.TempDir(), "lvm2"),
				Repository:  up.URL(),
				Reference:   "master",
			}

			first, err := Sync(client, co)
			if err != nil {
				t.Fatalf("first sync failed: %v", err)
			}
			if !first.Changed || first.Revision != firstRev {
				t.Errorf("first sync should check out the branch tip, got %+v", first)
			}

			tip := up.Commit("2.02.104", map[string]string{"VERSION": "2.02.104\n"})

			second, err := Sync(client, co)
			if err != nil {
				t.Fatalf("second sync failed: %v", err)
			}
			if !second.Changed || second.Previous != firstRev || second.Revision != tip {
				t.Errorf("sync should follow the branch to %s, got %+v", tip, second)
			}
			assertVersion(t, co.Destination, "2.02.104\n")

			third, err := Sync(client, co)
			if err != nil {
				t.Fatalf("third sync failed: %v", err)
			}
			if third.Changed {
				t.Errorf("branch did not move, sync should be unchanged, got %+v", third)
			}
		})
	}
}

func TestInspectAgainstUpstream(t *testing.T) {
	up := gittest.NewUpstream(t)
	up.Commit("2.02.103", map[string]string{"VERSION": "2.02.103\n"})
	up.Tag("v2_02_103")

	co := recipe.Checkout{
		Destination: filepath.Join(t.TempDir(), "lvm2"),
		Repository:  up.URL(),
		Reference:   "v2_02_103",
	}
	runner := git.NewGitRunner(co.Destination)

	ins, err := Inspect(runner, co)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if ins.State != StateMissing {
		t.Errorf("expected missing, got %q", ins.State)
	}

	if _, err := SyncWithRunner(runner, co); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	ins, err = Inspect(runner, co)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if ins.State != StateUpToDate {
		t.Errorf("expected up to date, got %q", ins.State)
	}

	if err := os.WriteFile(filepath.Join(co.Destination, "VERSION"), []byte("local\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ins, err = Inspect(runner, co)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if ins.State != StateModified || len(ins.Modified) != 1 || ins.Modified[0] != "VERSION" {
		t.Errorf("expected modified VERSION, got %+v", ins)
	}

	co.Reference = "v2_02_104"
	ins, err = Inspect(runner, co)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if ins.State != StateOutOfDate || ins.Target != "" {
		t.Errorf("unfetched reference should read out of date, got %+v", ins)
	}
}

func assertVersion(t *testing.T, dir, want string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "VERSION"))
	if err != nil {
		t.Fatalf("reading VERSION: %v", err)
	}
	if string(data) != want {
		t.Errorf("VERSION = %q, want %q", data, want)
	}
}
