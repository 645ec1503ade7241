package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func workdir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("vfs %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestFileCommands(t *testing.T) {
	dir := workdir(t)
	a := filepath.Join(dir, "a")
	file := filepath.Join(a, "b", "f.txt")

	mustRun(t, "mkdir", "-m", "0750", filepath.Join(a, "b"))
	mustRun(t, "write", file, "hello")
	mustRun(t, "write", "--append", file, " world")
	if out := mustRun(t, "cat", file); out != "hello world" {
		t.Errorf("cat = %q", out)
	}

	mustRun(t, "cp", a, filepath.Join(dir, "c"))
	if data, err := os.ReadFile(filepath.Join(dir, "c", "b", "f.txt")); err != nil || string(data) != "hello world" {
		t.Errorf("copied file = %q, %v", data, err)
	}

	mustRun(t, "mv", filepath.Join(dir, "c"), filepath.Join(dir, "d"))
	if _, err := os.Stat(filepath.Join(dir, "c")); !os.IsNotExist(err) {
		t.Errorf("moved source still exists")
	}

	link := filepath.Join(dir, "link")
	mustRun(t, "ln", file, link)
	if target, err := os.Readlink(link); err != nil || target != "a/b/f.txt" {
		t.Errorf("link target = %q, %v", target, err)
	}

	out := mustRun(t, "ls", dir)
	want := strings.Join([]string{a, filepath.Join(dir, "d"), link}, "\n") + "\n"
	if out != want {
		t.Errorf("ls = %q, want %q", out, want)
	}
	out = mustRun(t, "ls", "-R", "--files", a)
	if out != file+"\n" {
		t.Errorf("ls -R --files = %q", out)
	}

	mustRun(t, "chmod", "0700", a)
	if fi, _ := os.Stat(file); fi.Mode().Perm() != 0o700 {
		t.Errorf("chmod mode = %v", fi.Mode().Perm())
	}
	mustRun(t, "chmod", "--shallow", "go+rx", a)
	if fi, _ := os.Stat(a); fi.Mode().Perm() != 0o755 {
		t.Errorf("symbolic chmod mode = %v", fi.Mode().Perm())
	}

	out = mustRun(t, "stat", link)
	if !strings.Contains(out, "Type: symlink") || !strings.Contains(out, "Target: a/b/f.txt") {
		t.Errorf("stat output:\n%s", out)
	}

	mustRun(t, "rm", link)
	if _, err := run(t, "rm", a); err == nil {
		t.Error("rm of a non-empty directory should fail")
	}
	mustRun(t, "rm", "-r", a)
	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Errorf("rm -r left %s behind", a)
	}
}

func TestTree(t *testing.T) {
	dir := workdir(t)
	for _, p := range []string{"z.txt", "a/b/c.txt"} {
		full := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := mustRun(t, "tree", dir)
	want := dir + "/\n  a/\n    b/\n      c.txt\n  z.txt\n"
	if out != want {
		t.Errorf("tree =\n%s\nwant\n%s", out, want)
	}

	out = mustRun(t, "tree", "-L", "1", dir)
	want = dir + "/\n  a/\n  z.txt\n"
	if out != want {
		t.Errorf("tree -L 1 =\n%s\nwant\n%s", out, want)
	}
}
